package services

import (
	"slices"

	"go.uber.org/zap"

	"grapheditor/domain/core/aggregates"
	"grapheditor/domain/core/entities"
	"grapheditor/domain/core/validators"
	"grapheditor/domain/core/valueobjects"
	"grapheditor/domain/events"
	"grapheditor/domain/selection"
	pkgerrors "grapheditor/pkg/errors"
)

// RowEdit is one confirmed attribute row
type RowEdit struct {
	OldName string
	NewName string
	// Value is nil for rows showing a value count; only the name changes then.
	Value *valueobjects.AttrValue
}

// EditResult is the outcome of a batched attribute edit. Applied is false when
// the edit was a no-op because its trigger or selection did not allow it.
type EditResult struct {
	Graph     *aggregates.Graph
	Selection selection.Snapshot
	Applied   bool
}

// AttributeEditor applies attribute edits to every selected element at once.
// The input graph is never modified; a successful edit returns a new graph.
type AttributeEditor struct {
	validator *validators.ElementValidator
	logger    *zap.Logger
}

// NewAttributeEditor creates a new attribute editor
func NewAttributeEditor(validator *validators.ElementValidator, logger *zap.Logger) *AttributeEditor {
	return &AttributeEditor{
		validator: validator,
		logger:    logger,
	}
}

func unchanged(g *aggregates.Graph, sel selection.Snapshot) EditResult {
	return EditResult{Graph: g, Selection: sel}
}

// ConfirmEdit renames and/or revalues attributes across the selection and,
// for a single selected node, updates its label.
func (e *AttributeEditor) ConfirmEdit(
	g *aggregates.Graph,
	sel selection.Snapshot,
	trigger valueobjects.Trigger,
	edits []RowEdit,
	label *string,
) (EditResult, error) {
	if !trigger.IsRealClick() || sel.IsEmpty() {
		return unchanged(g, sel), nil
	}

	work := g.Clone()
	common := slices.Clone(sel.CommonAttrs)

	for _, edit := range edits {
		if err := e.validator.ValidateAttributeName(edit.NewName); err != nil {
			return unchanged(g, sel), err
		}
		if !slices.Contains(common, edit.OldName) {
			return unchanged(g, sel), pkgerrors.NewStaleReferenceError("attribute " + edit.OldName)
		}
		if edit.Value != nil {
			if err := e.validator.ValidateValue(*edit.Value); err != nil {
				return unchanged(g, sel), err
			}
		}

		for _, idx := range sel.ElementIndices {
			err := work.UpdateAt(idx, func(el entities.Element) (entities.Element, error) {
				renamed, err := el.WithRenamedAttribute(edit.OldName, edit.NewName)
				if err != nil || edit.Value == nil {
					return renamed, err
				}
				return renamed.WithAttribute(edit.NewName, *edit.Value)
			})
			if err != nil {
				return unchanged(g, sel), err
			}
		}

		common = replaceName(common, edit.OldName, edit.NewName)
		change := events.AttributeRenamed
		if edit.Value != nil {
			change = events.AttributeRevalued
		}
		work.RecordAttributeChange(change, edit.OldName, edit.NewName, len(sel.ElementIndices))
	}

	if label != nil {
		if ref, ok := sel.SingleNode(); ok {
			if err := e.validator.ValidateLabel(*label); err != nil {
				return unchanged(g, sel), err
			}
			if _, err := work.SetLabel(ref.ID, *label); err != nil {
				return unchanged(g, sel), err
			}
		}
	}

	e.logger.Debug("Confirmed attribute edit",
		zap.Int("rows", len(edits)),
		zap.Int("elements", len(sel.ElementIndices)),
		zap.Bool("label", label != nil),
	)
	return EditResult{Graph: work, Selection: sel.WithCommonAttrs(common), Applied: true}, nil
}

// EditLabel changes the label of the single selected node
func (e *AttributeEditor) EditLabel(
	g *aggregates.Graph,
	sel selection.Snapshot,
	clicks valueobjects.ClickToken,
	label string,
) (EditResult, error) {
	if !clicks.Fired() {
		return unchanged(g, sel), nil
	}
	if _, ok := sel.SingleNode(); !ok {
		return unchanged(g, sel), nil
	}
	trigger := valueobjects.NewTrigger("label", clicks)
	return e.ConfirmEdit(g, sel, trigger, nil, &label)
}

// AddAttribute sets name to value on every selected element and adds it to
// the common attributes. An existing attribute of that name is overwritten.
func (e *AttributeEditor) AddAttribute(
	g *aggregates.Graph,
	sel selection.Snapshot,
	clicks valueobjects.ClickToken,
	name string,
	value *valueobjects.AttrValue,
) (EditResult, error) {
	if !clicks.Fired() || sel.IsEmpty() {
		return unchanged(g, sel), nil
	}
	if err := e.validator.ValidateAttributeName(name); err != nil {
		return unchanged(g, sel), err
	}
	if value == nil {
		return unchanged(g, sel), pkgerrors.NewValidationError("attribute value is missing").WithCode("NO_VALUE")
	}
	if err := e.validator.ValidateValue(*value); err != nil {
		return unchanged(g, sel), err
	}

	work := g.Clone()
	for _, idx := range sel.ElementIndices {
		err := work.UpdateAt(idx, func(el entities.Element) (entities.Element, error) {
			return el.WithAttribute(name, *value)
		})
		if err != nil {
			return unchanged(g, sel), err
		}
	}
	work.RecordAttributeChange(events.AttributeAdded, name, "", len(sel.ElementIndices))

	common := slices.Clone(sel.CommonAttrs)
	if !slices.Contains(common, name) {
		common = append(common, name)
		slices.Sort(common)
	}

	e.logger.Debug("Added attribute",
		zap.String("attribute", name),
		zap.String("kind", string(value.Kind())),
		zap.Int("elements", len(sel.ElementIndices)),
	)
	return EditResult{Graph: work, Selection: sel.WithCommonAttrs(common), Applied: true}, nil
}

// RemoveAttribute deletes name from every selected element. Every selected
// element must carry the attribute.
func (e *AttributeEditor) RemoveAttribute(
	g *aggregates.Graph,
	sel selection.Snapshot,
	trigger valueobjects.Trigger,
	name string,
) (EditResult, error) {
	if !trigger.IsRealClick() || sel.IsEmpty() {
		return unchanged(g, sel), nil
	}

	work := g.Clone()
	for _, idx := range sel.ElementIndices {
		err := work.UpdateAt(idx, func(el entities.Element) (entities.Element, error) {
			return el.WithoutAttribute(name)
		})
		if err != nil {
			return unchanged(g, sel), err
		}
	}
	work.RecordAttributeChange(events.AttributeRemoved, name, "", len(sel.ElementIndices))

	common := slices.DeleteFunc(slices.Clone(sel.CommonAttrs), func(n string) bool { return n == name })

	e.logger.Debug("Removed attribute",
		zap.String("attribute", name),
		zap.Int("elements", len(sel.ElementIndices)),
	)
	return EditResult{Graph: work, Selection: sel.WithCommonAttrs(common), Applied: true}, nil
}

func replaceName(names []string, oldName, newName string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == oldName {
			n = newName
		}
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}
