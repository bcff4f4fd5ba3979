// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package config

import (
	"fmt"

	"github.com/specialistvlad/blockflow/internal/model"
)

// Document is everything loaded from a set of definition files: at most one
// workflow plus any number of dynamic block definitions.
type Document struct {
	Workflow *model.Workflow
	Blocks   []*model.DynamicBlockDefinition
}

// MultipleWorkflowsError is returned when more than one loaded file declares
// a workflow.
type MultipleWorkflowsError struct {
	First  string
	Second string
}

func (e *MultipleWorkflowsError) Error() string {
	return fmt.Sprintf("only one workflow may be loaded at a time, found one in %s and another in %s", e.First, e.Second)
}

// Merge folds other into d. Dynamic blocks are appended in load order.
func (d *Document) Merge(other *Document) error {
	if other == nil {
		return nil
	}
	if other.Workflow != nil {
		if d.Workflow != nil {
			return &MultipleWorkflowsError{
				First:  d.Workflow.FSInformation.String(),
				Second: other.Workflow.FSInformation.String(),
			}
		}
		d.Workflow = other.Workflow
	}
	d.Blocks = append(d.Blocks, other.Blocks...)
	return nil
}
