// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package compiler

import (
	"strings"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/syntax"
)

type attrKind uint8

const (
	attrUnknown attrKind = iota

	// Interfaces.
	attrUUID
	attrScriptable
	attrBuiltinclass
	attrFunction
	attrObject
	attrMainProcessScriptableOnly
	attrRustSync

	// Attributes and methods.
	attrBinaryname
	attrNoscript
	attrNotxpcom
	attrSymbol
	attrImplicitJSContext
	attrNostdcall
	attrMustUse
	attrInfallible
	attrCanRunScript
	attrSetterCanRunScript
	attrGetterCanRunScript
	attrOptionalArgc

	// Parameters.
	attrSizeIs
	attrIIDIs
	attrDefault
	attrConst
	attrArray
	attrRetval
	attrShared
	attrOptional

	// Natives.
	attrPtr
	attrRef
	attrNsID
	attrUTF8String
	attrCString
	attrAString
	attrJSVal
	attrPromise
)

func (k attrKind) takesValue() bool {
	switch k {
	case attrUUID, attrBinaryname, attrSizeIs, attrIIDIs, attrDefault:
		return true
	}
	return false
}

type attrContext uint8

const (
	attrCtxInterface attrContext = iota
	attrCtxAttribute
	attrCtxMethod
	attrCtxParam
	attrCtxNative
)

var attrTables = map[attrContext]map[string]attrKind{
	attrCtxInterface: {
		"uuid":                         attrUUID,
		"scriptable":                   attrScriptable,
		"builtinclass":                 attrBuiltinclass,
		"function":                     attrFunction,
		"object":                       attrObject,
		"main_process_scriptable_only": attrMainProcessScriptableOnly,
		"rust_sync":                    attrRustSync,
	},
	attrCtxAttribute: {
		"binaryname":            attrBinaryname,
		"noscript":              attrNoscript,
		"notxpcom":              attrNotxpcom,
		"symbol":                attrSymbol,
		"implicit_jscontext":    attrImplicitJSContext,
		"nostdcall":             attrNostdcall,
		"must_use":              attrMustUse,
		"infallible":            attrInfallible,
		"can_run_script":        attrCanRunScript,
		"setter_can_run_script": attrSetterCanRunScript,
		"getter_can_run_script": attrGetterCanRunScript,
	},
	attrCtxMethod: {
		"binaryname":         attrBinaryname,
		"noscript":           attrNoscript,
		"notxpcom":           attrNotxpcom,
		"symbol":             attrSymbol,
		"implicit_jscontext": attrImplicitJSContext,
		"optional_argc":      attrOptionalArgc,
		"nostdcall":          attrNostdcall,
		"must_use":           attrMustUse,
		"can_run_script":     attrCanRunScript,
		"infallible":         attrInfallible,
	},
	attrCtxParam: {
		"size_is":  attrSizeIs,
		"iid_is":   attrIIDIs,
		"default":  attrDefault,
		"const":    attrConst,
		"array":    attrArray,
		"retval":   attrRetval,
		"shared":   attrShared,
		"optional": attrOptional,
	},
	attrCtxNative: {
		"ptr":        attrPtr,
		"ref":        attrRef,
		"nsid":       attrNsID,
		"utf8string": attrUTF8String,
		"cstring":    attrCString,
		"astring":    attrAString,
		"jsval":      attrJSVal,
		"promise":    attrPromise,
	},
}

type attrValue struct {
	kind  attrKind
	name  string
	value string
	loc   syntax.Location
}

// decodeAttrs checks attrs against the attribute table of ctx. Unknown
// attributes of an interface are reported at the interface itself.
func decodeAttrs(
	ctx attrContext,
	attrs []*syntax.Attr,
	declLoc syntax.Location,
) ([]attrValue, error) {
	table := attrTables[ctx]
	out := make([]attrValue, 0, len(attrs))
	for _, attr := range attrs {
		name := attr.Name()
		value, hasValue := attr.Value()
		kind := table[name]

		if ctx == attrCtxInterface && kind == attrUnknown {
			return nil, errUnknownAttr(ctx, name, declLoc)
		}
		if kind.takesValue() {
			if !hasValue {
				return nil, errAttrNeedsValue(ctx, name, attr.Location())
			}
		} else {
			if hasValue {
				return nil, errAttrUnexpectedValue(ctx, name, attr.Location())
			}
			if kind == attrUnknown {
				return nil, errUnknownAttr(ctx, name, attr.Location())
			}
		}
		out = append(out, attrValue{
			kind:  kind,
			name:  name,
			value: value,
			loc:   attr.Location(),
		})
	}
	return out, nil
}

// InterfaceAttributes are the flags from an interface's attribute list.
type InterfaceAttributes struct {
	UUID                      string
	Scriptable                bool
	BuiltinClass              bool
	Function                  bool
	MainProcessScriptableOnly bool
	RustSync                  bool
}

func newInterfaceAttributes(attrs []*syntax.Attr, loc syntax.Location) (InterfaceAttributes, error) {
	var ia InterfaceAttributes
	decoded, err := decodeAttrs(attrCtxInterface, attrs, loc)
	if err != nil {
		return ia, err
	}
	for _, attr := range decoded {
		switch attr.kind {
		case attrUUID:
			ia.UUID = strings.ToLower(attr.value)
		case attrScriptable:
			ia.Scriptable = true
		case attrBuiltinclass:
			ia.BuiltinClass = true
		case attrFunction:
			ia.Function = true
		case attrMainProcessScriptableOnly:
			ia.MainProcessScriptableOnly = true
		case attrRustSync:
			ia.RustSync = true
		}
	}
	if ia.UUID == "" {
		return ia, errInterfaceNoUUID(loc)
	}
	return ia, nil
}

// MemberFlags are the attribute-list flags shared by attributes and
// methods.
type MemberFlags struct {
	NoScript          bool
	NotXPCOM          bool
	Symbol            bool
	ImplicitJSContext bool
	NoStdCall         bool
	MustUse           bool
	Infallible        bool
	BinaryName        string
}

func (f *MemberFlags) apply(attr attrValue) bool {
	switch attr.kind {
	case attrBinaryname:
		f.BinaryName = attr.value
	case attrNoscript:
		f.NoScript = true
	case attrNotxpcom:
		f.NotXPCOM = true
	case attrSymbol:
		f.Symbol = true
	case attrImplicitJSContext:
		f.ImplicitJSContext = true
	case attrNostdcall:
		f.NoStdCall = true
	case attrMustUse:
		f.MustUse = true
	case attrInfallible:
		f.Infallible = true
	default:
		return false
	}
	return true
}

// ParamFlags are the flags from a parameter's attribute list.
type ParamFlags struct {
	SizeIs   string
	IIDIs    string
	Default  string
	Const    bool
	Array    bool
	Retval   bool
	Shared   bool
	Optional bool
}

func newParamFlags(attrs []*syntax.Attr, loc syntax.Location) (ParamFlags, error) {
	var pf ParamFlags
	decoded, err := decodeAttrs(attrCtxParam, attrs, loc)
	if err != nil {
		return pf, err
	}
	for _, attr := range decoded {
		switch attr.kind {
		case attrSizeIs:
			pf.SizeIs = attr.value
		case attrIIDIs:
			pf.IIDIs = attr.value
		case attrDefault:
			pf.Default = attr.value
		case attrConst:
			pf.Const = true
		case attrArray:
			pf.Array = true
		case attrRetval:
			pf.Retval = true
		case attrShared:
			pf.Shared = true
		case attrOptional:
			pf.Optional = true
		}
	}
	return pf, nil
}
