package io

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/matzehuels/ganttsync/pkg/errors"
	"github.com/matzehuels/ganttsync/pkg/mutate"
)

// MaxPatchBytes bounds a single patch document.
const MaxPatchBytes = 64 << 10

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaUpdate  = "schemas/update.json"
	schemaNewTask = "schemas/newtask.json"
)

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

// Problem is one schema violation.
type Problem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// SchemaError lists every violation found in a patch.
type SchemaError struct {
	Problems []Problem `json:"problems"`
}

func (e *SchemaError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.String()
	}
	return strings.Join(msgs, "; ")
}

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true

		names := []string{schemaUpdate, schemaNewTask}
		for _, name := range names {
			data, err := schemaFS.ReadFile(name)
			if err != nil {
				schemasErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
				schemasErr = fmt.Errorf("add schema %s: %w", name, err)
				return
			}
		}
		schemas = make(map[string]*jsonschema.Schema, len(names))
		for _, name := range names {
			s, err := compiler.Compile(name)
			if err != nil {
				schemasErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			schemas[name] = s
		}
	})
	return schemas, schemasErr
}

// DecodeUpdate reads a task update patch from r.
func DecodeUpdate(r io.Reader) (mutate.Update, error) {
	var u mutate.Update
	if err := decodePatch(r, schemaUpdate, "update", &u); err != nil {
		return mutate.Update{}, err
	}
	if u.Label != nil {
		if err := errors.ValidateLabel("label", *u.Label); err != nil {
			return mutate.Update{}, errors.Wrap(errors.ErrCodeInvalidPatch, err, "invalid update patch")
		}
	}
	return u, nil
}

// DecodeNewTask reads the description of a task to insert from r.
func DecodeNewTask(r io.Reader) (mutate.NewTask, error) {
	var nt mutate.NewTask
	if err := decodePatch(r, schemaNewTask, "new task", &nt); err != nil {
		return mutate.NewTask{}, err
	}
	if nt.Label != "" {
		if err := errors.ValidateLabel("label", nt.Label); err != nil {
			return mutate.NewTask{}, errors.Wrap(errors.ErrCodeInvalidPatch, err, "invalid new task patch")
		}
	}
	return nt, nil
}

func decodePatch(r io.Reader, schemaName, kind string, out any) error {
	all, err := compileSchemas()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "load patch schemas")
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxPatchBytes+1))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPatch, err, "read %s patch", kind)
	}
	if len(data) > MaxPatchBytes {
		return errors.New(errors.ErrCodeInvalidPatch, "%s patch too large (max %d bytes)", kind, MaxPatchBytes)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPatch, err, "decode %s patch", kind)
	}
	if err := all[schemaName].Validate(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPatch, schemaError(err), "invalid %s patch", kind)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPatch, err, "decode %s patch", kind)
	}
	return nil
}

func schemaError(err error) *SchemaError {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &SchemaError{Problems: []Problem{{Message: err.Error()}}}
	}
	se := &SchemaError{}
	collectProblems(se, ve)
	if len(se.Problems) == 0 {
		se.Problems = append(se.Problems, Problem{Message: ve.Message})
	}
	return se
}

func collectProblems(se *SchemaError, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		se.Problems = append(se.Problems, Problem{
			Path:    jsonPointerToPath(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectProblems(se, cause)
	}
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	return strings.ReplaceAll(ptr, "/", ".")
}
