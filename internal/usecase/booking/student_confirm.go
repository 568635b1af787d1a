package booking

import (
	"context"

	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/models"
)

// Student-confirm actions. Confirming and reporting fraud are mutually
// exclusive terminal outcomes for a completed booking.
const (
	ActionConfirm     = "confirm"
	ActionReportFraud = "report_fraud"
)

type StudentConfirmInput struct {
	Action string
	Notes  string
}

type StudentConfirm struct {
	verify *VerifyBooking
	report *ReportFraud
}

func NewStudentConfirm(verify *VerifyBooking, report *ReportFraud) *StudentConfirm {
	return &StudentConfirm{
		verify: verify,
		report: report,
	}
}

func (uc *StudentConfirm) Execute(
	ctx context.Context,
	userID uint,
	bookingID uint,
	in StudentConfirmInput,
) (*models.Booking, error) {

	switch in.Action {
	case ActionConfirm:
		result, err := uc.verify.Execute(ctx, userID, bookingID)
		if err != nil {
			return nil, err
		}
		return result.Booking, nil

	case ActionReportFraud:
		result, err := uc.report.Execute(ctx, userID, bookingID, in.Notes)
		if err != nil {
			return nil, err
		}
		return result.Booking, nil

	default:
		return nil, httperr.ErrBusiness("invalid_action")
	}
}
