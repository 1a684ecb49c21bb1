package service

import (
	"context"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
)

// Command kinds accepted by Dispatch.
const (
	CmdApprove          = "approve"
	CmdReject           = "reject"
	CmdEditItemQuantity = "edit_item_quantity"
)

// Command is one requested approval-pipeline mutation. Presentation layers
// build commands; they never reach into the state machine directly.
type Command struct {
	Kind     string `json:"kind"`
	IndentID string `json:"indent_id"`
	Actor    Actor  `json:"-"`

	// reject
	Remarks string `json:"remarks,omitempty"`

	// edit_item_quantity
	ItemIndex   int   `json:"item_index,omitempty"`
	NewQuantity int64 `json:"new_quantity,omitempty"`
}

// Result is the state produced by a successfully dispatched command.
type Result struct {
	Indent *entity.Indent `json:"indent"`
}

// Dispatch routes a command to the matching operation.
func (s *ApprovalService) Dispatch(ctx context.Context, cmd Command) (*Result, error) {
	switch cmd.Kind {
	case CmdApprove:
		ind, err := s.Approve(ctx, cmd.IndentID, cmd.Actor)
		if err != nil {
			return nil, err
		}
		return &Result{Indent: ind}, nil
	case CmdReject:
		ind, err := s.Reject(ctx, cmd.IndentID, cmd.Actor, cmd.Remarks)
		if err != nil {
			return nil, err
		}
		return &Result{Indent: ind}, nil
	case CmdEditItemQuantity:
		ind, err := s.EditItemQuantity(ctx, cmd.IndentID, cmd.Actor, cmd.ItemIndex, cmd.NewQuantity)
		if err != nil {
			return nil, err
		}
		return &Result{Indent: ind}, nil
	default:
		return nil, apperr.Validationf("unknown command kind %q", cmd.Kind)
	}
}
