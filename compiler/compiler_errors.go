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
	"errors"
	"fmt"

	"github.com/mattmanj17-forks/gecko-dev/xpcom/idl-parser/syntax"
)

// NoncompatError reports that a type cannot be represented in one of the
// binding languages. Generators are expected to skip the affected
// declaration rather than fail.
type NoncompatError struct {
	Target string
	Reason string
}

const (
	TargetRust       = "rust"
	TargetTypeScript = "typescript"
)

func (err *NoncompatError) Error() string {
	return err.Reason
}

func IsNoncompat(err error) bool {
	var nc *NoncompatError
	return errors.As(err, &nc)
}

func rustNoncompat(format string, args ...any) error {
	return &NoncompatError{
		Target: TargetRust,
		Reason: fmt.Sprintf(format, args...),
	}
}

func tsNoncompat(format string, args ...any) error {
	return &NoncompatError{
		Target: TargetTypeScript,
		Reason: fmt.Sprintf(format, args...),
	}
}

func errBuiltinRedeclared(name string, loc syntax.Location) error {
	return syntax.NewError(
		3000,
		fmt.Sprintf("name '%s' is a builtin and cannot be redeclared", name),
		loc,
	)
}

func errNameSpecifiedTwice(name string, prev, loc syntax.Location) error {
	return syntax.NewError(
		3001,
		fmt.Sprintf("name '%s' specified twice. Previous location: %s", name, prev.Get()),
		loc,
	)
}

func errNameNotFound(name string, loc syntax.Location) error {
	return syntax.NewError(3002, fmt.Sprintf("Name '%s' not found", name), loc)
}

func errTypeNotFound(name string, loc syntax.Location) error {
	return syntax.NewError(3003, fmt.Sprintf("type '%s' not found", name), loc)
}

func errArrayParams(loc syntax.Location) error {
	return syntax.NewError(3004, "Array takes exactly 1 parameter", loc)
}

func errGenericUnrecognized(name string, loc syntax.Location) error {
	return syntax.NewError(3005, fmt.Sprintf("Generic type '%s' unrecognized", name), loc)
}

func errFileNotFound(filename string, loc syntax.Location) error {
	return syntax.NewError(3006, fmt.Sprintf("File '%s' not found", filename), loc)
}

func errIncludeCycle(path string, loc syntax.Location) error {
	return syntax.NewError(3007, fmt.Sprintf("include cycle: '%s' includes itself", path), loc)
}

func errCDATAVirtual(loc syntax.Location) error {
	return syntax.NewError(
		3008,
		"cannot declare a C++ `virtual` member in XPIDL interface",
		loc,
		"All virtual members must be declared directly using XPIDL. Both the"+
			" Rust bindings and XPConnect rely on the per-platform vtable layouts"+
			" generated by the XPIDL compiler to allow cross-language XPCOM method"+
			" calls between JS and C++. Consider using a `[notxpcom, nostdcall]`"+
			" method instead.",
	)
}

func errTypedefTarget(loc syntax.Location) error {
	return syntax.NewError(3009, "Unsupported typedef target type", loc)
}

func errUnknownAttr(ctx attrContext, name string, loc syntax.Location) error {
	switch ctx {
	case attrCtxInterface:
		return syntax.NewError(3010, fmt.Sprintf("Unexpected interface attribute '%s'", name), loc)
	case attrCtxNative:
		return syntax.NewError(3010, "Unexpected attribute", loc)
	}
	return syntax.NewError(3010, fmt.Sprintf("Unexpected attribute '%s'", name), loc)
}

func errAttrNeedsValue(ctx attrContext, name string, loc syntax.Location) error {
	var msg string
	switch {
	case ctx == attrCtxInterface:
		msg = fmt.Sprintf("Expected value for attribute '%s'", name)
	case name == "binaryname":
		msg = "binaryname attribute requires a value"
	case name == "default":
		msg = "'default' must specify a default value"
	default:
		msg = fmt.Sprintf("'%s' must specify a parameter", name)
	}
	return syntax.NewError(3011, msg, loc)
}

func errAttrUnexpectedValue(ctx attrContext, name string, loc syntax.Location) error {
	switch ctx {
	case attrCtxInterface, attrCtxParam:
		return syntax.NewError(3012, fmt.Sprintf("Unexpected value for attribute '%s'", name), loc)
	}
	return syntax.NewError(3012, "Unexpected attribute value", loc)
}

func errNativeModifierTwice(loc syntax.Location) error {
	return syntax.NewError(3013, "More than one ptr/ref modifier", loc)
}

func errNativeSpecialTypeTwice(loc syntax.Location) error {
	return syntax.NewError(3014, "More than one special type", loc)
}

func errRedundantCanRunScript(which string, loc syntax.Location) error {
	var msg string
	switch which {
	case "setter_can_run_script":
		msg = "Redundant setter_can_run_script annotation on attribute"
	case "getter_can_run_script":
		msg = "Redundant getter_can_run_script annotation on attribute"
	default:
		msg = "Redundant getter_can_run_script or setter_can_run_script annotation on attribute"
	}
	return syntax.NewError(3015, msg, loc)
}

func errInterfaceNoUUID(loc syntax.Location) error {
	return syntax.NewError(3016, "interface has no uuid", loc)
}

func errBuiltinclassNotScriptable(name string, loc syntax.Location) error {
	return syntax.NewError(
		3020,
		fmt.Sprintf("Non-scriptable interface '%s' doesn't need to be marked builtinclass", name),
		loc,
	)
}

func errFunctionMultipleMethods(name string, loc syntax.Location) error {
	return syntax.NewError(
		3021,
		fmt.Sprintf("interface '%s' has multiple methods, but marked 'function'", name),
		loc,
	)
}

func errBaseNotInterface(name, base string, loc syntax.Location) error {
	return syntax.NewError(
		3022,
		fmt.Sprintf("interface '%s' inherits from non-interface type '%s'", name, base),
		loc,
	)
}

func errBaseSelf(name string, loc syntax.Location) error {
	return syntax.NewError(
		3068,
		fmt.Sprintf("interface '%s' inherits from itself", name),
		loc,
	)
}

func errScriptableBase(name, base string, loc syntax.Location) error {
	return syntax.NewError(
		3023,
		fmt.Sprintf("interface '%s' is scriptable but derives from non-scriptable '%s'", name, base),
		loc,
	)
}

func errBuiltinclassBase(name, base string, loc syntax.Location) error {
	return syntax.NewError(
		3024,
		fmt.Sprintf("interface '%s' is not builtinclass but derives from builtinclass '%s'", name, base),
		loc,
	)
}

func errRustSyncBase(name, base string, loc syntax.Location) error {
	return syntax.NewError(
		3025,
		fmt.Sprintf("interface '%s' is not rust_sync but derives from rust_sync '%s'", name, base),
		loc,
	)
}

func errRustSyncBuiltinclass(name string, loc syntax.Location) error {
	return syntax.NewError(
		3026,
		fmt.Sprintf("interface '%s' is rust_sync but is not builtinclass", name),
		loc,
	)
}

func errNoBase(name string, loc syntax.Location) error {
	return syntax.NewError(
		3027,
		fmt.Sprintf("Interface '%s' must inherit from nsISupports", name),
		loc,
	)
}

func errTooManyEntries(name string, loc syntax.Location) error {
	return syntax.NewError(3028, fmt.Sprintf("interface '%s' has too many entries", name), loc)
}

func errSymbolNotFound(name string, loc syntax.Location) error {
	return syntax.NewError(3030, fmt.Sprintf("cannot find symbol '%s'", name), loc)
}

func errSymbolNotConst(name string, loc syntax.Location) error {
	return syntax.NewError(3031, fmt.Sprintf("symbol '%s' is not a constant", name), loc)
}

func errConstType(typeName string, loc syntax.Location) error {
	return syntax.NewError(
		3032,
		fmt.Sprintf("const may only be an integer type, not %s", typeName),
		loc,
	)
}

func errConstRange(signed bool, loc syntax.Location) error {
	limit := "uint32_t"
	if signed {
		limit = "int32_t"
	}
	return syntax.NewError(3033, fmt.Sprintf("xpidl constants must fit within %s", limit), loc)
}

func errConstCycle(name string, loc syntax.Location) error {
	return syntax.NewError(3035, fmt.Sprintf("constant '%s' depends on itself", name), loc)
}

func errRetvalNotLast(name string, loc syntax.Location) error {
	return syntax.NewError(
		3040,
		fmt.Sprintf("'retval' parameter '%s' is not the last parameter", name),
		loc,
	)
}

func errSizeIsDirection(loc syntax.Location) error {
	return syntax.NewError(3041, "size_is parameter of an input must also be an input", loc)
}

func errSizeIsType(loc syntax.Location) error {
	return syntax.NewError(3042, "size_is parameter must have type 'uint32_t'", loc)
}

func errIIDIsDirection(loc syntax.Location) error {
	return syntax.NewError(3043, "iid_is parameter of an input must also be an input", loc)
}

func errIIDIsType(loc syntax.Location) error {
	return syntax.NewError(3044, "iid_is parameter must be an nsIID", loc)
}

func errInfallibleType(loc syntax.Location) error {
	return syntax.NewError(
		3050,
		"[infallible] only works on interfaces, domobjects, and builtin types"+
			" (numbers, booleans, cenum, and raw char types)",
		loc,
	)
}

func errInfallibleScriptable(loc syntax.Location) error {
	return syntax.NewError(
		3051,
		"[infallible] attributes and methods are only allowed on"+
			" non-[scriptable] or [builtinclass] interfaces",
		loc,
	)
}

func errInfallibleNotXPCOM(loc syntax.Location) error {
	return syntax.NewError(
		3052,
		"[infallible] does not make sense for a [notxpcom] method or attribute",
		loc,
	)
}

func errNeedsBuiltinclass(iface, flag string, kind Kind, name string, loc syntax.Location) error {
	return syntax.NewError(
		3053,
		fmt.Sprintf(
			"scriptable interface '%s' must be marked [builtinclass] because it"+
				" contains a [%s] %s '%s'",
			iface, flag, kind, name,
		),
		loc,
	)
}

func errNeedsBuiltinclassParam(iface, method, param string, loc syntax.Location) error {
	return syntax.NewError(
		3054,
		fmt.Sprintf(
			"scriptable interface '%s' must be marked [builtinclass] because it"+
				" contains method '%s' with a by-value custom native parameter '%s'",
			iface, method, param,
		),
		loc,
	)
}

func errNeedsBuiltinclassAttribute(iface, attr string, loc syntax.Location) error {
	return syntax.NewError(
		3055,
		fmt.Sprintf(
			"scriptable interface '%s' must be marked [builtinclass] because it"+
				" contains writable attribute '%s' with a by-value custom native type",
			iface, attr,
		),
		loc,
	)
}

func errNeedsNoscript(kind Kind, name string, loc syntax.Location) error {
	return syntax.NewError(
		3056,
		fmt.Sprintf("%s '%s' must be marked [noscript] because it has a non-scriptable type", kind, name),
		loc,
	)
}

func errNeedsNoscriptParam(method, param string, loc syntax.Location) error {
	return syntax.NewError(
		3057,
		fmt.Sprintf(
			"method '%s' must be marked [noscript] because it has a"+
				" non-scriptable parameter '%s'",
			method, param,
		),
		loc,
	)
}

func errStringArrayElement(loc syntax.Location) error {
	return syntax.NewError(3060, "Use string class types for string Array elements", loc)
}

func errSharedNonPointer(loc syntax.Location) error {
	return syntax.NewError(3061, "[shared] not applicable to non-pointer types.", loc)
}

func errSharedNotOut(loc syntax.Location) error {
	return syntax.NewError(3062, "[shared] only applies to out parameters.", loc)
}

func errNsIDPtrArray(loc syntax.Location) error {
	return syntax.NewError(
		3063,
		"Array<nsIDPtr> not yet supported. File an XPConnect bug if you need it.",
		loc,
	)
}

func errRefArray(loc syntax.Location) error {
	return syntax.NewError(3064, "[ref] qualified type unsupported in Array<T>", loc)
}

func errNestedLegacyArray(loc syntax.Location) error {
	return syntax.NewError(3065, "nested [array] unsupported", loc)
}

func errLegacyArrayOfArray(loc syntax.Location) error {
	return syntax.NewError(3066, "[array] Array<T> is unsupported", loc)
}

func errUnexpectedParamAttr(loc syntax.Location) error {
	return syntax.NewError(3067, "Unexpected parameter attribute", loc)
}
