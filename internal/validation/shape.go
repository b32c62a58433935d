package validation

// Kind tags a Shape as either a primitive (never validated) or a structure
// whose fields carry constraint rules.
type Kind int

const (
	// KindStruct is the zero value: a shape with named fields and rules.
	KindStruct Kind = iota
	KindString
	KindBoolean
	KindNumber
	KindArray
	// KindObject is an untyped object; like the other primitives it is
	// passed through without validation.
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Rule is one constraint attached to a field of a shape.
//
// Tag is a go-playground/validator tag expression evaluated against the field
// value alone, e.g. "required", "omitempty,url" or "required,is_string,max=100".
// Message is what the client sees when the rule fails; when empty a message is
// derived from the failing tag.
type Rule struct {
	Field   string
	Tag     string
	Message string
}

// Shape describes the target a candidate value is validated against.
//
// Field order is the order in which fields first appear in Rules. A field may
// carry several rules; they are evaluated in declaration order too.
type Shape struct {
	Name  string
	Kind  Kind
	Rules []Rule
}

// Primitive shapes. Candidates targeting them are accepted unchanged.
var (
	String  = &Shape{Name: "string", Kind: KindString}
	Boolean = &Shape{Name: "boolean", Kind: KindBoolean}
	Number  = &Shape{Name: "number", Kind: KindNumber}
	Array   = &Shape{Name: "array", Kind: KindArray}
	Object  = &Shape{Name: "object", Kind: KindObject}
)

// NewShape builds a structured shape from its rules.
func NewShape(name string, rules ...Rule) *Shape {
	return &Shape{Name: name, Kind: KindStruct, Rules: rules}
}

// IsPrimitive reports whether validation must be skipped for this shape.
// A nil shape counts as primitive: there is nothing to validate against.
func (s *Shape) IsPrimitive() bool {
	return s == nil || s.Kind != KindStruct
}

// Fields returns the distinct field names in declaration order.
func (s *Shape) Fields() []string {
	if s == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(s.Rules))
	fields := make([]string, 0, len(s.Rules))
	for _, r := range s.Rules {
		if _, ok := seen[r.Field]; ok {
			continue
		}
		seen[r.Field] = struct{}{}
		fields = append(fields, r.Field)
	}
	return fields
}

// rulesFor returns the rules of one field in declaration order.
func (s *Shape) rulesFor(field string) []Rule {
	var rules []Rule
	for _, r := range s.Rules {
		if r.Field == field {
			rules = append(rules, r)
		}
	}
	return rules
}

// Violation records the first failing rule of a field.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}
