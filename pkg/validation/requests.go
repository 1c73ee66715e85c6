package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()

	// MaxWalkDepth bounds depth-limited traversal requests; 0 means
	// unbounded and is allowed.
	MaxWalkDepth = 100

	// MaxMessageLength bounds chat input.
	MaxMessageLength = 2000

	idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

// WalkRequest carries the parameters of an upstream/downstream query.
type WalkRequest struct {
	ID    string `json:"id" validate:"required,max=200"`
	Kind  string `json:"kind" validate:"omitempty,oneof=DEPENDS_ON OWNED_BY"`
	Depth int    `json:"depth" validate:"omitempty,min=0"`
}

// PathRequest carries the endpoints of a shortest-path query.
type PathRequest struct {
	From string `json:"from" validate:"required,max=200"`
	To   string `json:"to" validate:"required,max=200"`
	Kind string `json:"kind" validate:"omitempty,oneof=DEPENDS_ON OWNED_BY"`
}

// ChatRequest is one natural-language question for the chat endpoint.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ValidateWalkRequest checks a traversal request before it reaches the
// query engine.
func ValidateWalkRequest(req *WalkRequest) error {
	if req == nil {
		return errors.New("walk request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if req.Depth > MaxWalkDepth {
		return fmt.Errorf("depth: maximum depth is %d, got %d", MaxWalkDepth, req.Depth)
	}
	return ValidateNodeID("id", req.ID)
}

// ValidatePathRequest checks a shortest-path request.
func ValidatePathRequest(req *PathRequest) error {
	if req == nil {
		return errors.New("path request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if err := ValidateNodeID("from", req.From); err != nil {
		return err
	}
	return ValidateNodeID("to", req.To)
}

// ValidateChatRequest checks a chat message.
func ValidateChatRequest(req *ChatRequest) error {
	if req == nil {
		return errors.New("chat request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if len(req.Message) > MaxMessageLength {
		return fmt.Errorf("message: maximum length is %d characters", MaxMessageLength)
	}
	return nil
}

// ValidateNodeID checks that an id is in canonical form: lower-kebab,
// starting with an alphanumeric.
func ValidateNodeID(field, id string) error {
	if id == "" {
		return fmt.Errorf("%s: node id cannot be empty", field)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%s: node id %q is not in canonical form (lowercase, digits and hyphens)", field, id)
	}
	return nil
}

// formatValidationError turns validator's struct errors into a readable
// single message.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("%s: required field is missing", fe.Field())
		case "oneof":
			return fmt.Errorf("%s: must be one of %s", fe.Field(), fe.Param())
		case "max":
			return fmt.Errorf("%s: exceeds maximum length of %s", fe.Field(), fe.Param())
		case "min":
			return fmt.Errorf("%s: below minimum of %s", fe.Field(), fe.Param())
		default:
			return fmt.Errorf("%s: failed %s validation", fe.Field(), fe.Tag())
		}
	}
	return err
}
