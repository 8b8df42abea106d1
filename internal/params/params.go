package params

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/solidarity/internal/ledger"
)

//go:embed schema.cue
var schemaSource string

// CompileError reports a parameter file problem with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Defaults returns the schema defaults.
func Defaults() (ledger.Params, error) {
	return LoadBytes("", nil)
}

// Load reads overrides from path. An empty path yields the defaults.
func Load(path string) (ledger.Params, error) {
	if path == "" {
		return Defaults()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ledger.Params{}, fmt.Errorf("read params %s: %w", path, err)
	}
	return LoadBytes(path, data)
}

// LoadBytes unifies the CUE source in data with the schema and decodes the
// result. name is used for error positions.
func LoadBytes(name string, data []byte) (ledger.Params, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return ledger.Params{}, formatCUEError(err)
	}

	value := schema.LookupPath(cue.ParsePath("params"))
	if len(data) > 0 {
		user := ctx.CompileBytes(data, cue.Filename(name))
		if err := user.Err(); err != nil {
			return ledger.Params{}, formatCUEError(err)
		}
		if fields := user.LookupPath(cue.ParsePath("params")); fields.Exists() {
			value = value.Unify(fields)
		} else {
			value = value.Unify(user)
		}
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return ledger.Params{}, formatCUEError(err)
	}

	var p ledger.Params
	if err := value.Decode(&p); err != nil {
		return ledger.Params{}, formatCUEError(err)
	}
	if err := p.Validate(); err != nil {
		return ledger.Params{}, &CompileError{Field: "params", Message: err.Error()}
	}
	return p, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	field := "params"
	if path := first.Path(); len(path) > 0 {
		field = strings.Join(path, ".")
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: field, Message: first.Error(), Pos: positions[0]}
	}
	return &CompileError{Field: field, Message: first.Error()}
}
