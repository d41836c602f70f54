// SPDX-License-Identifier: Apache-2.0

package slc

import "strings"

// ResponseKind identifies the class of one response line. Every
// possible line maps to exactly one kind, so callers never face an
// unclassified string.
type ResponseKind int

const (
	// ResponseAck is the bare positive acknowledgement "##".
	ResponseAck ResponseKind = iota

	// ResponseAckData is a positive response carrying a payload after
	// the leading "#".
	ResponseAckData

	// ResponseSoftError is "#!": the firmware accepted the command
	// syntactically but could not execute it, typically because the
	// channel is in the wrong mode.
	ResponseSoftError

	// ResponseInvalidParam is "#?": a parameter was rejected by the
	// firmware.
	ResponseInvalidParam

	// ResponseUndefined is the firmware's "... is not defined" reply to
	// a command verb it does not know.
	ResponseUndefined

	// ResponseMalformed is anything else: an unexpected echo, a partial
	// line, or noise. It signals protocol desynchronization and is
	// never treated as success.
	ResponseMalformed
)

// Response is one classified wire response.
type Response struct {
	Kind    ResponseKind
	Payload string // remainder after the leading "#" for ResponseAckData
	Raw     string // the line as received, terminator stripped
}

// OK reports whether the response is a positive acknowledgement, with
// or without data.
func (r Response) OK() bool {
	return r.Kind == ResponseAck || r.Kind == ResponseAckData
}

// Classify maps one raw response line (terminator stripped) to exactly
// one response kind. Checks run in order: the exact markers "##", "#!"
// and "#?" first, then any other "#"-prefixed line as a data response,
// then the undefined-command phrase, and finally ResponseMalformed for
// everything else, including a bare "#". Matching is case-sensitive
// and lexical; no payload interpretation happens here.
func Classify(line string) Response {
	switch {
	case line == markerAck:
		return Response{Kind: ResponseAck, Raw: line}
	case line == markerSoftError:
		return Response{Kind: ResponseSoftError, Raw: line}
	case line == markerInvalidParam:
		return Response{Kind: ResponseInvalidParam, Raw: line}
	case len(line) > 1 && line[0] == '#':
		return Response{Kind: ResponseAckData, Payload: line[1:], Raw: line}
	case strings.HasSuffix(line, undefinedPhrase):
		return Response{Kind: ResponseUndefined, Raw: line}
	default:
		return Response{Kind: ResponseMalformed, Raw: line}
	}
}
