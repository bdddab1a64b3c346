package gram

import "github.com/pkg/errors"

// Diagnostic errors surfaced to callers of the public API. These are fatal
// for the call that triggered them; see Registry.Generate and Field.Build.
var (
	ErrCategoryMissing    = errors.New("gram: category not defined")
	ErrNameMissing        = errors.New("gram: referenced name not defined")
	ErrEmptyCategory      = errors.New("gram: category has no surviving rules")
	ErrUnreachableGrammar = errors.New("gram: every rule in category is unreachable")
)

// errSkipSubtree is raised by Opt/Star to mean "produce nothing here". It is
// caught by the nearest enclosing And/Join/Def, which omits that child.
var errSkipSubtree = errors.New("gram: skip subtree")

// errFlushPrereqs is reserved for extension nodes that signal a statement
// boundary. The core field set never raises it directly, but And/Def know
// how to catch and promote it per the scope-stack rules in BuildContext.
var errFlushPrereqs = errors.New("gram: flush prerequisites")

// errRuntimeBuild wraps an unexpected failure encountered while building a
// single sample. Registry.Generate discards the staged-defs buffer and
// retries without counting the attempt toward num.
type errRuntimeBuild struct {
	cause error
}

func (e *errRuntimeBuild) Error() string { return "gram: runtime build error: " + e.cause.Error() }
func (e *errRuntimeBuild) Unwrap() error { return e.cause }

func newRuntimeBuildError(cause error) error {
	return &errRuntimeBuild{cause: cause}
}

func isRuntimeBuildError(err error) bool {
	_, ok := err.(*errRuntimeBuild)
	return ok
}
