package xml

import "fmt"

// ErrorKind tags the XmlCoreError union: Syntax violations are raw grammar
// failures tied to a production number; WFC and NSC are the two constraint
// families the XML and XML Namespaces recommendations name explicitly.
type ErrorKind int

const (
	KindSyntax ErrorKind = iota
	KindWFC
	KindNSC
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "Syntax"
	case KindWFC:
		return "WFC"
	case KindNSC:
		return "NSC"
	default:
		return "Unknown"
	}
}

// WFCKind enumerates the well-formedness constraints this module checks.
type WFCKind int

const (
	WFCElementTypeMatch WFCKind = iota
	WFCEntityDeclared
	WFCNoRecursion
)

func (k WFCKind) String() string {
	switch k {
	case WFCElementTypeMatch:
		return "ElementTypeMatch"
	case WFCEntityDeclared:
		return "EntityDeclared"
	case WFCNoRecursion:
		return "NoRecursion"
	default:
		return "Unknown"
	}
}

// NSCKind enumerates the namespace constraints this module checks.
type NSCKind int

const (
	NSCPrefixDeclared NSCKind = iota
	NSCNoPrefixUndeclaring
	NSCAttributesUnique
)

func (k NSCKind) String() string {
	switch k {
	case NSCPrefixDeclared:
		return "PrefixDeclared"
	case NSCNoPrefixUndeclaring:
		return "NoPrefixUndeclaring"
	case NSCAttributesUnique:
		return "AttributesUnique"
	default:
		return "Unknown"
	}
}

// XmlCoreError is the single error type every component in this module
// raises. It always carries the reader position at the moment of failure;
// Err, when set, is the lower-level cause.
type XmlCoreError struct {
	Pos          Position
	Kind         ErrorKind
	ProductionID string // set when Kind == KindSyntax
	WFC          WFCKind
	NSC          NSCKind
	Message      string
	Err          error
}

func (e *XmlCoreError) Error() string {
	switch e.Kind {
	case KindSyntax:
		if e.ProductionID != "" {
			return fmt.Sprintf("xml:%d:%d: syntax error (production %s): %s", e.Pos.Line, e.Pos.Column, e.ProductionID, e.Message)
		}
		return fmt.Sprintf("xml:%d:%d: syntax error: %s", e.Pos.Line, e.Pos.Column, e.Message)
	case KindWFC:
		return fmt.Sprintf("xml:%d:%d: well-formedness violation (%s): %s", e.Pos.Line, e.Pos.Column, e.WFC, e.Message)
	case KindNSC:
		return fmt.Sprintf("xml:%d:%d: namespace constraint violation (%s): %s", e.Pos.Line, e.Pos.Column, e.NSC, e.Message)
	default:
		return fmt.Sprintf("xml:%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
}

func (e *XmlCoreError) Unwrap() error { return e.Err }

func newSyntaxError(pos Position, prodID, msg string) *XmlCoreError {
	return &XmlCoreError{Pos: pos, Kind: KindSyntax, ProductionID: prodID, Message: msg}
}

func newSyntaxErrorf(pos Position, prodID, format string, args ...any) *XmlCoreError {
	return newSyntaxError(pos, prodID, fmt.Sprintf(format, args...))
}

func newWFCError(pos Position, kind WFCKind, msg string) *XmlCoreError {
	return &XmlCoreError{Pos: pos, Kind: KindWFC, WFC: kind, Message: msg}
}

func newNSCError(pos Position, kind NSCKind, msg string) *XmlCoreError {
	return &XmlCoreError{Pos: pos, Kind: KindNSC, NSC: kind, Message: msg}
}

// AsXmlCoreError reports whether err is (or wraps) an *XmlCoreError, the
// idiomatic errors.As-friendly accessor for callers that want to branch on
// Kind without a type switch at every call site.
func AsXmlCoreError(err error) (*XmlCoreError, bool) {
	for err != nil {
		if xerr, ok := err.(*XmlCoreError); ok {
			return xerr, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
