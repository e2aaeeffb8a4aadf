package apperr

import (
	"errors"
	"fmt"
)

const (
	MetaReason    = "reason"
	MetaStage     = "stage"
	MetaField     = "field"
	MetaScenario  = "scenario_id"
	MetaStep      = "step_id"
	MetaElement   = "element_id"
	MetaProvider  = "provider"
	MetaFramework = "framework"
	MetaAttempt   = "attempt"
	MetaSelector  = "selector"
	MetaURL       = "url"

	StageConfig     = "config"
	StageBrowser    = "browser"
	StageLocator    = "locator"
	StagePicker     = "picker"
	StagePrompt     = "prompt"
	StageProvider   = "provider"
	StageParse      = "parse"
	StageValidation = "validation"
	StageGeneration = "generation"
	StageScenario   = "scenario"
	StageOutput     = "output"

	CodeInternal        = "internal"
	CodeInvalidArgument = "invalid_argument"
	CodeNotFound        = "not_found"
	CodeUnavailable     = "unavailable"
	CodeTimeout         = "timeout"
	CodeConfig          = "config"
	CodeTransport       = "transport"
	CodeParseFailed     = "parse_failed"
	CodeInvalidCode     = "invalid_code"
	CodeCancelled       = "cancelled"
	CodeBrowserNotReady = "browser_not_ready"
	CodeQueryFailed     = "query_failed"
)

type Error struct {
	Op       string
	Code     string
	Err      error
	Metadata map[string]any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(op, code string, err error, metadata map[string]any) error {
	if metadata == nil {
		metadata = make(map[string]any)
	}

	return &Error{
		Op:       op,
		Code:     code,
		Err:      err,
		Metadata: metadata,
	}
}

func WrapWithReason(op, code string, err error, reason string) error {
	return Wrap(op, code, err, map[string]any{
		MetaReason: reason,
	})
}

func WrapErrorWithReason(op, code, reason string) error {
	return Wrap(op, code, errors.New(reason), map[string]any{
		MetaReason: reason,
	})
}

func InvalidReqError(op, field string, err error) error {
	return Wrap(op, CodeInvalidArgument, err, map[string]any{
		MetaField:  field,
		MetaReason: "invalid_request",
	})
}

func NotFoundError(op string, err error) error {
	return Wrap(op, CodeNotFound, err, map[string]any{
		MetaReason: "not_found",
	})
}

// CodeOf walks err's unwrap chain and returns the first apperr code,
// falling back to CodeInternal for unclassified errors.
func CodeOf(err error) string {
	for e := err; e != nil; {
		appErr, ok := e.(*Error)
		if ok {
			return appErr.Code
		}

		unwrapper, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}

		e = unwrapper.Unwrap()
	}

	return CodeInternal
}
