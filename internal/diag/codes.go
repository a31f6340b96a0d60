package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Синтаксические: файл не соответствует грамматике профиля
	SynInfo            Code = 2000
	SynUnexpectedToken Code = 2001
	SynMissingToken    Code = 2002
	SynHashbang        Code = 2003
	SynFeatureLevel    Code = 2004
	SynModuleOnly      Code = 2005
	SynStrictMode      Code = 2006
	SynNotECMAScript   Code = 2007
	SynEarlyError      Code = 2008

	// Ошибки I/O
	IOLoadFileError Code = 4001
	IOEvalTimeout   Code = 4002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:        "Unknown error",
		SynInfo:            "Syntax information",
		SynUnexpectedToken: "Unexpected token",
		SynMissingToken:    "Missing token",
		SynHashbang:        "Interpreter directive not allowed",
		SynFeatureLevel:    "Syntax newer than target version",
		SynModuleOnly:      "Module syntax in script",
		SynStrictMode:      "Not allowed in strict mode",
		SynNotECMAScript:   "Syntax outside ECMAScript",
		SynEarlyError:      "Invalid in this context",
		IOLoadFileError:    "I/O load file error",
		IOEvalTimeout:      "Evaluation timed out",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Kind groups codes into the three per-file outcomes a check can record.
func (c Code) Kind() Kind {
	switch {
	case c == IOEvalTimeout:
		return KindTimeout
	case c >= 4000 && c < 5000:
		return KindIO
	default:
		return KindSyntax
	}
}
