package mapper

import (
	"bookreview-be/internal/dto"
	"bookreview-be/internal/entity"
	"bookreview-be/pkg/admin/assignment"
	"bookreview-be/pkg/admin/refund"
)

// AssignmentToExceptionResponse flattens an exception row for the admin dashboard.
func AssignmentToExceptionResponse(a *entity.ReaderAssignment) *dto.AssignmentExceptionResponse {
	if a == nil {
		return nil
	}
	res := &dto.AssignmentExceptionResponse{
		AssignmentId:         a.Id,
		BookId:               a.BookId,
		ReaderProfileId:      a.ReaderProfileId,
		Status:               string(a.Status),
		ExceptionType:        string(assignment.ClassifyException(a)),
		DeadlineAt:           a.DeadlineAt,
		DeadlineExtendedAt:   a.DeadlineExtendedAt,
		ExtensionReason:      a.ExtensionReason,
		ReassignedAt:         a.ReassignedAt,
		ReassignmentReason:   a.ReassignmentReason,
		CancellationReason:   a.CancellationReason,
		IsReassignment:       a.IsReassignment,
		OriginalAssignmentId: a.OriginalAssignmentId,
		UpdatedAt:            a.UpdatedAt,
	}
	if a.Book != nil {
		res.BookTitle = a.Book.Title
	}
	if a.ReaderProfile != nil {
		res.ReaderName = a.ReaderProfile.DisplayName
		if res.ReaderName == "" && a.ReaderProfile.User != nil {
			res.ReaderName = a.ReaderProfile.User.FullName
		}
	}
	return res
}

func AssignmentsToExceptionResponse(rows []*entity.ReaderAssignment) []*dto.AssignmentExceptionResponse {
	res := make([]*dto.AssignmentExceptionResponse, 0, len(rows))
	for _, a := range rows {
		res = append(res, AssignmentToExceptionResponse(a))
	}
	return res
}

func DeadlineResultToResponse(r *assignment.DeadlineResult, shortened bool) *dto.DeadlineChangeResponse {
	res := &dto.DeadlineChangeResponse{
		AssignmentId: r.AssignmentId,
		OldDeadline:  r.OldDeadline,
		NewDeadline:  r.NewDeadline,
		Reason:       r.Reason,
	}
	if shortened {
		res.ReductionHours = r.Hours
	} else {
		res.ExtensionHours = r.Hours
	}
	return res
}

func BulkResultToResponse(r *assignment.BulkResult) *dto.BulkReassignResponse {
	items := make([]dto.BulkReassignItem, 0, len(r.Results))
	for _, item := range r.Results {
		items = append(items, dto.BulkReassignItem{
			AssignmentId: item.AssignmentId,
			Success:      item.Success,
			Error:        item.Error,
		})
	}
	return &dto.BulkReassignResponse{
		TotalProcessed: r.TotalProcessed,
		SuccessCount:   r.SuccessCount,
		FailureCount:   r.FailureCount,
		Results:        items,
	}
}

func EligibilityToResponse(e refund.Eligibility) *dto.RefundEligibilityResponse {
	return &dto.RefundEligibilityResponse{
		CreditPurchaseId:  e.CreditPurchaseId,
		IsEligible:        e.IsEligible,
		Reason:            e.Reason,
		DaysSincePurchase: e.DaysSincePurchase,
		DaysRemaining:     e.DaysRemaining,
		Credits:           e.Credits,
		CreditsUsed:       e.CreditsUsed,
		AmountPaid:        e.AmountPaid,
		Currency:          e.Currency,
		ExistingRequestId: e.ExistingRequestId,
	}
}

// RefundToResponse is the author-facing view. eligibility may be nil.
func RefundToResponse(r *entity.RefundRequest, eligibility *dto.RefundEligibilityResponse) *dto.RefundRequestResponse {
	if r == nil {
		return nil
	}
	return &dto.RefundRequestResponse{
		Id:               r.Id,
		CreditPurchaseId: r.CreditPurchaseId,
		Reason:           string(r.Reason),
		Explanation:      r.Explanation,
		Status:           string(r.Status),
		AdminNotes:       r.AdminNotes,
		RefundAmount:     r.RefundAmount,
		StripeRefundId:   r.StripeRefundId,
		ReviewedAt:       r.ReviewedAt,
		ProcessedAt:      r.ProcessedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		Eligibility:      eligibility,
	}
}

// RefundToAdminResponse adds the author and purchase the admin needs to decide.
func RefundToAdminResponse(r *entity.RefundRequest, eligibility *dto.RefundEligibilityResponse) *dto.AdminRefundRequestResponse {
	if r == nil {
		return nil
	}
	res := &dto.AdminRefundRequestResponse{
		RefundRequestResponse: *RefundToResponse(r, eligibility),
		ReviewedBy:            r.ReviewedBy,
	}
	if p := r.AuthorProfile; p != nil {
		res.Author = &dto.RefundAuthorInfo{
			AuthorProfileId: p.Id,
			UserId:          p.UserId,
			PenName:         p.PenName,
		}
		if p.User != nil {
			res.Author.Email = p.User.Email
			res.Author.FullName = p.User.FullName
		}
	}
	if p := r.CreditPurchase; p != nil {
		res.Purchase = &dto.RefundPurchaseInfo{
			Id:            p.Id,
			Credits:       p.Credits,
			AmountPaid:    p.AmountPaid,
			Currency:      p.Currency,
			PaymentStatus: string(p.PaymentStatus),
			PurchaseDate:  p.PurchaseDate,
		}
	}
	return res
}

func AuditLogToResponse(l *entity.AuditLog) *dto.AuditLogResponse {
	if l == nil {
		return nil
	}
	return &dto.AuditLogResponse{
		Id:         l.Id,
		ActorId:    l.ActorId,
		Action:     l.Action,
		Severity:   string(l.Severity),
		EntityType: l.EntityType,
		EntityId:   l.EntityId,
		Details:    l.Details,
		CreatedAt:  l.CreatedAt,
	}
}

func AuditLogsToResponse(logs []*entity.AuditLog) []*dto.AuditLogResponse {
	res := make([]*dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, AuditLogToResponse(l))
	}
	return res
}
