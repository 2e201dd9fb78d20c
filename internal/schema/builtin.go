package schema

// Builtin scalars and directives registered by WithBuiltins. They are shared
// across schemas and must never be mutated after build.

func builtinScalar(name, description string) *Type {
	return &Type{Name: name, Kind: TypeKindScalar, Description: description}
}

var (
	stringType  = builtinScalar("String", "UTF-8 textual data.")
	intType     = builtinScalar("Int", "Signed 32-bit integer.")
	floatType   = builtinScalar("Float", "Signed double-precision floating point value.")
	booleanType = builtinScalar("Boolean", "true or false.")
	idType      = builtinScalar("ID", "Unique identifier, serialized as a string.")
)

var fragmentLocations = []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"}

func conditionDirective(name, description, argDescription string) *Directive {
	return &Directive{
		Name:        name,
		Description: description,
		Arguments: []*InputValue{
			{
				Name:        "if",
				Description: argDescription,
				Type:        NonNullType(NamedType("Boolean")),
			},
		},
		Locations: fragmentLocations,
	}
}

var includeDirective = conditionDirective("include",
	"Include this field or fragment only when the `if` argument is true.",
	"Included when true.")

var skipDirective = conditionDirective("skip",
	"Skip this field or fragment when the `if` argument is true.",
	"Skipped when true.")
