// Package shimgen translates a Plan's ABI_BREAK actions into a single C
// source file providing each broken symbol via forwarding, remapping, or
// a logging stub.
package shimgen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/aosp-tools/vndk-compat/internal/diffengine"
	"github.com/aosp-tools/vndk-compat/internal/policy"
)

const preludeTmpl = `/*
 * Generated by vndk-compat shimgen. Do not edit by hand.
 * vendor_api_level={{.VendorAPILevel}}
 */
#include <dlfcn.h>
#include <log/log.h>

static void* get_real_lib_handle(const char* lib_name) {
    static void* handle = NULL;
    if (!handle) {
        handle = dlopen(lib_name, RTLD_NOW);
    }
    return handle;
}

extern "C" {

`

const forwardTmpl = `void* {{.Name}}(...) {
    typedef void* (*func_ptr)(...);
    static func_ptr real_func = NULL;
    if (!real_func) {
        void* handle = get_real_lib_handle("{{.TargetLib}}.so");
        if (handle) {
            real_func = (func_ptr)dlsym(handle, "{{.Name}}");
        }
    }
    if (real_func) return real_func();
    ALOGE("vndk_compat: %s not found", "{{.Name}}");
    return NULL;
}

`

const remapTmpl = `extern void* {{.NewName}}(...);
void* {{.OldName}}(...) {
    return {{.NewName}}();
}

`

const stubTmpl = `void* {{.Name}}(...) {
    ALOGW("vndk_compat: stub called for %s", "{{.Name}}");
    return NULL;
}

`

const epilogueTmpl = `}
`

var templates = template.Must(template.New("shim").Parse(
	"{{define \"prelude\"}}" + preludeTmpl + "{{end}}" +
		"{{define \"forward\"}}" + forwardTmpl + "{{end}}" +
		"{{define \"remap\"}}" + remapTmpl + "{{end}}" +
		"{{define \"stub\"}}" + stubTmpl + "{{end}}" +
		"{{define \"epilogue\"}}" + epilogueTmpl + "{{end}}",
))

type preludeData struct{ VendorAPILevel int }
type forwardData struct{ Name, TargetLib string }
type remapData struct{ OldName, NewName string }
type stubData struct{ Name string }

// Generate renders the C source for plan's ABI_BREAK actions, in plan
// action order. Generation is idempotent: the same plan always produces
// byte-identical output (spec §4.4 "Determinism").
func Generate(plan diffengine.Plan) (string, error) {
	var buf bytes.Buffer

	if err := templates.ExecuteTemplate(&buf, "prelude", preludeData{VendorAPILevel: plan.VendorAPILevel}); err != nil {
		return "", fmt.Errorf("rendering shim prelude: %w", err)
	}

	for _, a := range plan.Actions {
		if a.Type != diffengine.ActionABIBreak || a.Resolution == nil {
			continue
		}
		if err := renderSymbol(&buf, a); err != nil {
			return "", err
		}
	}

	if err := templates.ExecuteTemplate(&buf, "epilogue", nil); err != nil {
		return "", fmt.Errorf("rendering shim epilogue: %w", err)
	}

	return buf.String(), nil
}

func renderSymbol(buf *bytes.Buffer, a diffengine.Action) error {
	switch a.Resolution.Action {
	case policy.ActionShim:
		if a.Resolution.Remap != "" {
			return templates.ExecuteTemplate(buf, "remap", remapData{OldName: a.Symbol, NewName: a.Resolution.Remap})
		}
		targetLib := strings.TrimSuffix(a.Target, ".so")
		return templates.ExecuteTemplate(buf, "forward", forwardData{Name: a.Symbol, TargetLib: targetLib})
	case policy.ActionStub:
		return templates.ExecuteTemplate(buf, "stub", stubData{Name: a.Symbol})
	default:
		// snapshot (or any other action, including NONE) is handled
		// downstream by the snapshot fallback, not by generated code.
		return nil
	}
}
