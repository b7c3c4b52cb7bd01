package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxNameLength  = 100
	MaxLabelLength = 50

	// labelPattern restricts source labels to identifier-safe characters,
	// since labels become column-name suffixes in the merged table.
	labelPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

func init() {
	validate = validator.New()
}

// SourceRequest represents one omics source table declared in configuration
type SourceRequest struct {
	Label string `yaml:"label" validate:"required,min=1,max=50"`
	Kind  string `yaml:"kind" validate:"required,oneof=expression mutation cnv"`
	Path  string `yaml:"path" validate:"required"`
}

// EdgeRecord represents one biomarker-dependency link read from or written to
// the processed-features artifact
type EdgeRecord struct {
	Biomarker  string  `json:"biomarker" validate:"required,min=1,max=100"`
	Dependency string  `json:"dependency" validate:"required,min=1,max=100"`
	Importance float64 `json:"importance_score" validate:"required,gt=0,lte=1"`
}

// ValidateSourceRequest validates an omics source declaration
func ValidateSourceRequest(req *SourceRequest) error {
	if req == nil {
		return errors.New("source request cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if !labelPattern.MatchString(req.Label) {
		return fmt.Errorf("Label: %q contains characters outside [a-zA-Z0-9_]", req.Label)
	}

	return nil
}

// ValidateEdgeRecord validates an edge row before it enters the graph
func ValidateEdgeRecord(rec *EdgeRecord) error {
	if rec == nil {
		return errors.New("edge record cannot be nil")
	}

	if err := validate.Struct(rec); err != nil {
		return formatValidationError(err)
	}

	if rec.Biomarker == rec.Dependency {
		return fmt.Errorf("Biomarker/Dependency: endpoints must differ, both are %q", rec.Biomarker)
	}

	return nil
}

// formatValidationError converts validator errors into readable messages
func formatValidationError(err error) error {
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		if len(valErrs) > 0 {
			e := valErrs[0]
			return fmt.Errorf("%s: failed %q validation (value: %v)", e.Field(), e.Tag(), e.Value())
		}
	}
	return err
}
