package assignment

import (
	"fmt"
	"strings"
)

type ErrorType string

const (
	ErrorTypeWrongFormat    ErrorType = "WRONG_FORMAT"
	ErrorTypeWrongBook      ErrorType = "WRONG_BOOK"
	ErrorTypeDuplicate      ErrorType = "DUPLICATE"
	ErrorTypeMissingCredits ErrorType = "MISSING_CREDITS"
	ErrorTypeOther          ErrorType = "OTHER"
)

// Correction is a closed set: only the variants below implement it.
type Correction interface {
	Type() ErrorType
	Action() string
	Description() string
	correction()
}

type details struct {
	action      string
	description string
}

func (d details) Action() string      { return d.action }
func (d details) Description() string { return d.description }
func (d details) correction()         {}

// WrongFormatCorrection toggles EBOOK and AUDIOBOOK and reprices the assignment.
type WrongFormatCorrection struct{ details }

// MissingCreditsCorrection is advisory; credits are granted through the allocation flow.
type MissingCreditsCorrection struct{ details }

type WrongBookCorrection struct{ details }

type DuplicateCorrection struct{ details }

type OtherCorrection struct{ details }

func (WrongFormatCorrection) Type() ErrorType    { return ErrorTypeWrongFormat }
func (MissingCreditsCorrection) Type() ErrorType { return ErrorTypeMissingCredits }
func (WrongBookCorrection) Type() ErrorType      { return ErrorTypeWrongBook }
func (DuplicateCorrection) Type() ErrorType      { return ErrorTypeDuplicate }
func (OtherCorrection) Type() ErrorType          { return ErrorTypeOther }

// ParseCorrection maps the wire error type onto its variant.
func ParseCorrection(errorType, action, description string) (Correction, error) {
	d := details{action: action, description: description}
	switch ErrorType(strings.ToUpper(strings.TrimSpace(errorType))) {
	case ErrorTypeWrongFormat:
		return WrongFormatCorrection{d}, nil
	case ErrorTypeMissingCredits:
		return MissingCreditsCorrection{d}, nil
	case ErrorTypeWrongBook:
		return WrongBookCorrection{d}, nil
	case ErrorTypeDuplicate:
		return DuplicateCorrection{d}, nil
	case ErrorTypeOther:
		return OtherCorrection{d}, nil
	default:
		return nil, fmt.Errorf("unknown error type %q", errorType)
	}
}
