// Package drafterr defines the caller-facing failure categories of the draft engine.
package drafterr

import (
	"errors"
	"fmt"
)

// Kind classifies a draft engine failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindPermissionDenied
	KindTurnViolation
	KindConflict
	KindConfiguration
	KindNotFound
	KindInvalidArgument
	KindUnavailable // persistence failure, safe to retry
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindPermissionDenied:
		return "permission_denied"
	case KindTurnViolation:
		return "turn_violation"
	case KindConflict:
		return "conflict"
	case KindConfiguration:
		return "configuration"
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is a categorised draft engine error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind and message so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Msg == t.Msg
}

// New returns an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

var (
	ErrUnauthenticated   = New(KindUnauthenticated, "caller is not authenticated")
	ErrNotMember         = New(KindPermissionDenied, "caller is not a member of this league")
	ErrNotCommissioner   = New(KindPermissionDenied, "only the commissioner may perform this action")
	ErrNotYourTurn       = New(KindTurnViolation, "not your turn")
	ErrAlreadyDrafted    = New(KindConflict, "player already drafted")
	ErrAlreadyQueued     = New(KindConflict, "player already in queue")
	ErrDraftExists       = New(KindConflict, "league already has a draft")
	ErrDraftStarted      = New(KindConflict, "draft already started")
	ErrDraftCompleted    = New(KindConflict, "draft already completed")
	ErrDraftNotActive    = New(KindConflict, "draft is not active")
	ErrStalePick         = New(KindConflict, "draft advanced concurrently")
	ErrNoMembers         = New(KindConfiguration, "league has no members")
	ErrUnresolvedPicker  = New(KindConfiguration, "pick order could not resolve a member")
	ErrPartialPickOrder  = New(KindConfiguration, "some members have no pick order")
	ErrAuctionNotSupport = New(KindConfiguration, "auction drafts are not supported")
	ErrDraftNotFound     = New(KindNotFound, "draft not found")
	ErrMemberNotFound    = New(KindNotFound, "member not found")
	ErrPlayerNotFound    = New(KindNotFound, "player not found")
	ErrQueueEntryMissing = New(KindNotFound, "queue entry not found")
)
