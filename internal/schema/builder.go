package schema

import "fmt"

// Fluent construction API. The registry is assembled programmatically by the
// host, then sealed with Validate before any execution starts.

func NewSchema(description string) *Schema {
	return &Schema{
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

func (s *Schema) AddType(t *Type) *Schema {
	s.Types[t.Name] = t
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	s.Directives[d.Name] = d
	return s
}

// WithBuiltins registers the standard scalars and the @skip/@include
// directives.
func (s *Schema) WithBuiltins() *Schema {
	s.AddType(stringType).
		AddType(intType).
		AddType(floatType).
		AddType(booleanType).
		AddType(idType)
	s.AddDirective(includeDirective).
		AddDirective(skipDirective)
	return s
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type {
	t.Fields = append(t.Fields, f)
	return t
}

func (t *Type) AddInterface(name string) *Type {
	t.Interfaces = append(t.Interfaces, name)
	return t
}

func (t *Type) AddPossibleType(name string) *Type {
	t.PossibleTypes = append(t.PossibleTypes, name)
	return t
}

func (t *Type) AddEnumValue(v *EnumValue) *Type {
	t.EnumValues = append(t.EnumValues, v)
	return t
}

func (t *Type) AddInputField(v *InputValue) *Type {
	t.InputFields = append(t.InputFields, v)
	return t
}

func NewField(name, description string, typeRef *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typeRef}
}

func (f *Field) AddArgument(v *InputValue) *Field {
	f.Arguments = append(f.Arguments, v)
	return f
}

func (f *Field) SetRelation(kind RelationKind, target, inverse string) *Field {
	f.Relation = &Relation{Kind: kind, Target: target, Inverse: inverse}
	return f
}

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

func NewInputValue(name, description string, typeRef *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typeRef}
}

func (v *InputValue) SetDefault(value any) *InputValue {
	v.DefaultValue = value
	v.HasDefault = true
	return v
}

func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (e *EnumValue) Deprecate(reason string) *EnumValue {
	e.IsDeprecated = true
	e.DeprecationReason = reason
	return e
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(r bool) *Directive {
	d.IsRepeatable = r
	return d
}

func (d *Directive) AddArgument(v *InputValue) *Directive {
	d.Arguments = append(d.Arguments, v)
	return d
}

// inverseKinds maps each relation kind to the kind its inverse field must
// declare.
var inverseKinds = map[RelationKind]RelationKind{
	RelationOneToOne:       RelationOneToMany,
	RelationOneToMany:      RelationOneToOne,
	RelationManyToMany:     RelationManyToMany,
	RelationThrough:        RelationThroughMembers,
	RelationThroughMembers: RelationThrough,
}

// Validate checks the registry for configuration errors. An asymmetric
// relation declaration is a startup failure, never a runtime one.
func (s *Schema) Validate() error {
	for _, t := range s.Types {
		if t.Kind != TypeKindObject && t.Kind != TypeKindInterface {
			continue
		}
		for _, f := range t.Fields {
			if named := GetNamedType(f.Type); s.Types[named] == nil {
				return fmt.Errorf("schema: field %s.%s references unknown type %s", t.Name, f.Name, named)
			}
			for _, arg := range f.Arguments {
				if named := GetNamedType(arg.Type); s.Types[named] == nil {
					return fmt.Errorf("schema: argument %s.%s(%s:) references unknown type %s", t.Name, f.Name, arg.Name, named)
				}
			}
			if f.Relation == nil {
				continue
			}
			if err := s.validateRelation(t, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Schema) validateRelation(t *Type, f *Field) error {
	rel := f.Relation
	target := s.Types[rel.Target]
	if target == nil {
		return fmt.Errorf("schema: relation %s.%s targets unknown type %s", t.Name, f.Name, rel.Target)
	}
	wantKind, ok := inverseKinds[rel.Kind]
	if !ok {
		return fmt.Errorf("schema: relation %s.%s has unknown kind %q", t.Name, f.Name, rel.Kind)
	}
	inverse := target.Field(rel.Inverse)
	if inverse == nil {
		return fmt.Errorf("schema: relation %s.%s declares inverse %s.%s which does not exist",
			t.Name, f.Name, rel.Target, rel.Inverse)
	}
	if inverse.Relation == nil {
		return fmt.Errorf("schema: relation %s.%s has inverse %s.%s with no relation declared",
			t.Name, f.Name, rel.Target, rel.Inverse)
	}
	if inverse.Relation.Kind != wantKind {
		return fmt.Errorf("schema: relation %s.%s (%s) pairs with %s.%s (%s), want %s",
			t.Name, f.Name, rel.Kind, rel.Target, rel.Inverse, inverse.Relation.Kind, wantKind)
	}
	if inverse.Relation.Target != t.Name || inverse.Relation.Inverse != f.Name {
		return fmt.Errorf("schema: relation %s.%s is not mirrored by %s.%s",
			t.Name, f.Name, rel.Target, rel.Inverse)
	}
	return nil
}
