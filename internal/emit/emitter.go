// Package emit renders walked blueprints into their two delivery
// forms: a formatted Go source file holding one routine per triple,
// and a set of loadable closures executing the same instruction
// streams in process.
package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"

	"xfer-generator/internal/support"
	"xfer-generator/internal/walk"
)

// Config holds configuration for source emission.
type Config struct {
	// PackageName is the package of the generated file.
	PackageName string
	// Filename is the name of the generated file.
	Filename string
	// OutputDir is where generated files (and debug sidecars on
	// format failure) are written.
	OutputDir string
	// Imports are extra import paths the routines need, typically
	// the packages of bound domain structs.
	Imports []string
	// GenerateComments enables the per-routine doc comments.
	GenerateComments bool
}

// DefaultConfig returns the default emitter configuration.
func DefaultConfig() Config {
	return Config{
		PackageName:      "serializers",
		Filename:         "serializers.go",
		OutputDir:        "./generated",
		GenerateComments: true,
	}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g. "serializers.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Emitter renders blueprints to source text.
type Emitter struct {
	config Config
}

// NewEmitter creates an Emitter with the given configuration.
func NewEmitter(config Config) *Emitter {
	return &Emitter{config: config}
}

// RoutineName derives the emitted function name for a triple, e.g.
// "SerializeOrderRecordToObject".
func RoutineName(t walk.Triple) string {
	return fmt.Sprintf("Serialize%s%sTo%s", t.TypeName, capitalize(t.SourceRepr), capitalize(t.DestRepr))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

// fileData holds all data needed for the serializer file template.
type fileData struct {
	PackageName      string
	Imports          []string
	HasHandlers      bool
	GenerateComments bool
	Routines         []routineData
}

// routineData represents one serializer routine.
type routineData struct {
	Name       string
	Triple     string
	SourceType string
	DestType   string
	NewDest    string
	Steps      []stepData

	// triple keeps the walk identity for failure attribution.
	triple walk.Triple
}

// stepData represents one member-copy statement group.
type stepData struct {
	IsField  bool
	IsSingle bool

	Stmt string

	PresentExpr string
	AssignStmt  string

	ClearStmt   string
	ElemVar     string
	CollPresent string
	CollExpr    string
	AppendStmt  string
}

// Emit renders every blueprint into one formatted source file.
// Routines are emitted in routine-name order, so the same blueprints
// always produce byte-identical output. On a formatting failure the
// unformatted text is written as a debug sidecar and the raw content
// is returned alongside a GenerationFailure.
func (e *Emitter) Emit(blueprints []*walk.Blueprint) (*GeneratedFile, error) {
	data := &fileData{
		PackageName:      e.config.PackageName,
		Imports:          append([]string(nil), e.config.Imports...),
		GenerateComments: e.config.GenerateComments,
	}
	sort.Strings(data.Imports)

	seen := make(map[walk.Triple]bool, len(blueprints))

	for _, b := range blueprints {
		if seen[b.Triple] {
			continue
		}

		seen[b.Triple] = true

		routine, hasHandlers, err := e.routine(b)
		if err != nil {
			return nil, err
		}

		data.HasHandlers = data.HasHandlers || hasHandlers
		data.Routines = append(data.Routines, routine)
	}

	sort.Slice(data.Routines, func(i, j int) bool {
		return data.Routines[i].Name < data.Routines[j].Name
	})

	var buf bytes.Buffer
	if err := serializerTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		if e.config.OutputDir != "" {
			_ = writeDebugUnformatted(e.config.OutputDir, e.config.Filename, buf.Bytes())
		}

		return &GeneratedFile{Filename: e.config.Filename, Content: buf.Bytes()},
			&GenerationFailure{Triple: e.attribute(data), Raw: buf.Bytes(), Err: err}
	}

	return &GeneratedFile{Filename: e.config.Filename, Content: formatted}, nil
}

func (e *Emitter) routine(b *walk.Blueprint) (routineData, bool, error) {
	if !b.Complete() {
		return routineData{}, false, &GenerationFailure{
			Triple: b.Triple,
			Err:    fmt.Errorf("blueprint %s is incomplete", b.Triple),
		}
	}

	routine := routineData{
		Name:       RoutineName(b.Triple),
		Triple:     b.Triple.String(),
		SourceType: b.Source.InstanceType(),
		DestType:   b.Dest.InstanceType(),
		NewDest:    b.Dest.Instantiate(),
		triple:     b.Triple,
	}

	hasHandlers := false

	for _, instr := range b.Instructions {
		step := stepData{}

		switch instr.Kind {
		case walk.InstrField:
			step.IsField = true
			step.Stmt = instr.Stmt
			hasHandlers = hasHandlers || instr.Handler != ""

		case walk.InstrSingle:
			step.IsSingle = true
			step.PresentExpr = instr.PresentExpr
			step.AssignStmt = nestedCall(instr.AssignStmt, instr.Nested.Triple, instr.ArgExpr)

		case walk.InstrCollection:
			step.ClearStmt = instr.ClearStmt
			step.ElemVar = instr.ElemVar
			step.CollPresent = instr.CollPresentExpr
			step.CollExpr = instr.CollExpr
			step.AppendStmt = nestedCall(instr.AppendStmt, instr.Nested.Triple, instr.ElemArg)

		default:
			return routineData{}, false, &GenerationFailure{
				Triple: b.Triple,
				Err:    fmt.Errorf("unknown instruction kind %v for %s", instr.Kind, instr.Member),
			}
		}

		routine.Steps = append(routine.Steps, step)
	}

	return routine, hasHandlers, nil
}

// attribute re-renders each routine on its own and reports the first
// triple, in emission order, whose text does not format. A failure
// outside every single routine (header, imports) yields a zero triple
// and the batch text stands on its own.
func (e *Emitter) attribute(data *fileData) walk.Triple {
	for _, r := range data.Routines {
		single := &fileData{
			PackageName:      data.PackageName,
			Imports:          data.Imports,
			HasHandlers:      data.HasHandlers,
			GenerateComments: data.GenerateComments,
			Routines:         []routineData{r},
		}

		var buf bytes.Buffer
		if err := serializerTemplate.Execute(&buf, single); err != nil {
			continue
		}

		if _, err := format.Source(buf.Bytes()); err != nil {
			return r.triple
		}
	}

	return walk.Triple{}
}

// nestedCall substitutes the nested-value placeholder with the actual
// routine invocation.
func nestedCall(stmt string, nested walk.Triple, arg string) string {
	call := fmt.Sprintf("%s(%s, nil)", RoutineName(nested), arg)

	return strings.ReplaceAll(stmt, support.NestedValue, call)
}

// Template for the serializer file.

var serializerTemplate = template.Must(template.New("serializers").Parse(`// Code generated by xfergen. DO NOT EDIT.

package {{.PackageName}}

{{if .Imports}}
import (
{{range .Imports}}	"{{.}}"
{{end}})
{{end}}
{{if .HasHandlers}}
// handlers must be populated by the host program before any routine
// using a custom transformation runs.
var handlers = map[string]func(any) any{}
{{end}}
{{range .Routines}}
{{if $.GenerateComments}}// {{.Name}} copies one {{.Triple}} value. A nil destination
// allocates a fresh instance.
{{end}}func {{.Name}}(source {{.SourceType}}, destination {{.DestType}}) {{.DestType}} {
	if destination == nil {
		destination = {{.NewDest}}
	}
{{range .Steps}}{{if .IsField}}	{{.Stmt}}
{{else if .IsSingle}}	if {{.PresentExpr}} {
		{{.AssignStmt}}
	}
{{else}}	{{.ClearStmt}}
{{if .CollPresent}}	if {{.CollPresent}} {
		for _, {{.ElemVar}} := range {{.CollExpr}} {
			{{.AppendStmt}}
		}
	}
{{else}}	for _, {{.ElemVar}} := range {{.CollExpr}} {
		{{.AppendStmt}}
	}
{{end}}{{end}}{{end}}
	return destination
}
{{end}}
`))
