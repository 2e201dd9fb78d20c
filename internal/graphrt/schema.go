package graphrt

import (
	schema "github.com/hanpama/snapgraph/internal/schema"
)

/// BuildSchema assembles the photo graph registry: entities, their four
// relation kinds, the polymorphic agenda family, value-object inputs with
// their defaults, and the three root types.
func BuildSchema() (*schema.Schema, error) {
	s := schema.NewSchema("Photo sharing graph").WithBuiltins().
		SetQueryType("Query").
		SetMutationType("Mutation").
		SetSubscriptionType("Subscription")

	s.AddType(schema.NewType("DateTime", schema.TypeKindScalar, "RFC 3339 timestamp"))

	s.AddType(schema.NewType("PhotoCategory", schema.TypeKindEnum, "").
		AddEnumValue(schema.NewEnumValue("SELFIE", "")).
		AddEnumValue(schema.NewEnumValue("PORTRAIT", "")).
		AddEnumValue(schema.NewEnumValue("ACTION", "")).
		AddEnumValue(schema.NewEnumValue("LANDSCAPE", "")).
		AddEnumValue(schema.NewEnumValue("GRAPHIC", "")))

	s.AddType(schema.NewType("SortDirection", schema.TypeKindEnum, "").
		AddEnumValue(schema.NewEnumValue("ASCENDING", "")).
		AddEnumValue(schema.NewEnumValue("DESCENDING", "")))

	s.AddType(schema.NewType("SortField", schema.TypeKindEnum, "").
		AddEnumValue(schema.NewEnumValue("created", "")).
		AddEnumValue(schema.NewEnumValue("name", "")))

	s.AddType(schema.NewType("DateRange", schema.TypeKindInputObject, "Inclusive on both ends").
		AddInputField(schema.NewInputValue("start", "", schema.NonNullType(schema.NamedType("DateTime")))).
		AddInputField(schema.NewInputValue("end", "", schema.NonNullType(schema.NamedType("DateTime")))))

	s.AddType(schema.NewType("PhotoFilter", schema.TypeKindInputObject, "Conjunction of the present predicates").
		AddInputField(schema.NewInputValue("category", "", schema.NamedType("PhotoCategory"))).
		AddInputField(schema.NewInputValue("createdBetween", "", schema.NamedType("DateRange"))).
		AddInputField(schema.NewInputValue("taggedUsers", "", schema.ListType(schema.NonNullType(schema.NamedType("ID"))))).
		AddInputField(schema.NewInputValue("searchText", "", schema.NamedType("String"))))

	s.AddType(schema.NewType("DataPage", schema.TypeKindInputObject, "Window [start, start+first) of the sorted sequence").
		AddInputField(schema.NewInputValue("first", "", schema.NamedType("Int")).SetDefault(25)).
		AddInputField(schema.NewInputValue("start", "", schema.NamedType("Int")).SetDefault(0)))

	s.AddType(schema.NewType("DataSort", schema.TypeKindInputObject, "").
		AddInputField(schema.NewInputValue("sort", "", schema.NamedType("SortDirection")).
			SetDefault(schema.EnumLiteral("DESCENDING"))).
		AddInputField(schema.NewInputValue("sortBy", "", schema.NamedType("SortField")).
			SetDefault(schema.EnumLiteral("created"))))

	s.AddType(schema.NewType("PostPhotoInput", schema.TypeKindInputObject, "").
		AddInputField(schema.NewInputValue("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddInputField(schema.NewInputValue("url", "", schema.NonNullType(schema.NamedType("String")))).
		AddInputField(schema.NewInputValue("description", "", schema.NamedType("String"))).
		AddInputField(schema.NewInputValue("category", "", schema.NamedType("PhotoCategory")).
			SetDefault(schema.EnumLiteral("PORTRAIT"))).
		AddInputField(schema.NewInputValue("postedBy", "", schema.NonNullType(schema.NamedType("ID")))))

	s.AddType(schema.NewType("User", schema.TypeKindObject, "A member of the photo graph, identified by githubLogin").
		AddField(schema.NewField("githubLogin", "", schema.NonNullType(schema.NamedType("ID")))).
		AddField(schema.NewField("name", "", schema.NamedType("String"))).
		AddField(schema.NewField("avatar", "", schema.NamedType("String"))).
		AddField(listField("postedPhotos", "Photo", true).
			SetRelation(schema.RelationOneToMany, "Photo", "postedBy")).
		AddField(listField("inPhotos", "Photo", true).
			SetRelation(schema.RelationManyToMany, "Photo", "taggedUsers")).
		AddField(schema.NewField("friendships", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("Friendship"))))).
			SetRelation(schema.RelationThrough, "Friendship", "members")))

	s.AddType(schema.NewType("Photo", schema.TypeKindObject, "").
		AddField(schema.NewField("id", "", schema.NonNullType(schema.NamedType("ID")))).
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("url", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("description", "", schema.NamedType("String"))).
		AddField(schema.NewField("category", "", schema.NonNullType(schema.NamedType("PhotoCategory")))).
		AddField(schema.NewField("created", "", schema.NonNullType(schema.NamedType("DateTime")))).
		AddField(schema.NewField("postedBy", "", schema.NonNullType(schema.NamedType("User"))).
			SetRelation(schema.RelationOneToOne, "User", "postedPhotos")).
		AddField(pagedSortedField("taggedUsers", "User").
			SetRelation(schema.RelationManyToMany, "User", "inPhotos")))

	s.AddType(schema.NewType("Friendship", schema.TypeKindObject, "The edge itself: connects two or more users and outlives them").
		AddField(schema.NewField("id", "", schema.NonNullType(schema.NamedType("ID")))).
		AddField(schema.NewField("howLong", "", schema.NamedType("String"))).
		AddField(schema.NewField("whereWeMet", "", schema.NamedType("String"))).
		AddField(schema.NewField("members", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("User"))))).
			SetRelation(schema.RelationThroughMembers, "User", "friendships")))

	s.AddType(schema.NewType("ScheduleItem", schema.TypeKindInterface, "Anything with a name and a time window").
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("start", "", schema.NonNullType(schema.NamedType("DateTime")))).
		AddField(schema.NewField("end", "", schema.NonNullType(schema.NamedType("DateTime")))).
		AddPossibleType("StudyGroup").
		AddPossibleType("Workout"))

	s.AddType(schema.NewType("StudyGroup", schema.TypeKindObject, "").
		AddInterface("ScheduleItem").
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("start", "", schema.NonNullType(schema.NamedType("DateTime")))).
		AddField(schema.NewField("end", "", schema.NonNullType(schema.NamedType("DateTime")))).
		AddField(schema.NewField("topic", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("participants", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("ID")))))))

	s.AddType(schema.NewType("Workout", schema.TypeKindObject, "").
		AddInterface("ScheduleItem").
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("start", "", schema.NonNullType(schema.NamedType("DateTime")))).
		AddField(schema.NewField("end", "", schema.NonNullType(schema.NamedType("DateTime")))).
		AddField(schema.NewField("reps", "", schema.NonNullType(schema.NamedType("Int")))).
		AddField(schema.NewField("gymName", "", schema.NonNullType(schema.NamedType("String")))))

	s.AddType(schema.NewType("AgendaItem", schema.TypeKindUnion, "Disjoint agenda family").
		AddPossibleType("StudyGroup").
		AddPossibleType("Workout"))

	s.AddType(schema.NewType("Query", schema.TypeKindObject, "").
		AddField(schema.NewField("totalUsers", "", schema.NonNullType(schema.NamedType("Int")))).
		AddField(schema.NewField("totalPhotos", "", schema.NonNullType(schema.NamedType("Int")))).
		AddField(schema.NewField("allUsers", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("User"))))).
			// Larger default window than other lists.
			AddArgument(schema.NewInputValue("paging", "", schema.NamedType("DataPage")).
				SetDefault(map[string]any{"first": 50, "start": 0})).
			AddArgument(schema.NewInputValue("sorting", "", schema.NamedType("DataSort")))).
		AddField(listField("allPhotos", "Photo", true)).
		AddField(schema.NewField("user", "", schema.NamedType("User")).
			AddArgument(schema.NewInputValue("githubLogin", "", schema.NonNullType(schema.NamedType("ID"))))).
		AddField(schema.NewField("photo", "", schema.NamedType("Photo")).
			AddArgument(schema.NewInputValue("id", "", schema.NonNullType(schema.NamedType("ID"))))).
		AddField(schema.NewField("agenda", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("AgendaItem")))))).
		AddField(schema.NewField("schedule", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("ScheduleItem")))))))

	s.AddType(schema.NewType("Mutation", schema.TypeKindObject, "").
		AddField(schema.NewField("postPhoto", "", schema.NonNullType(schema.NamedType("Photo"))).
			AddArgument(schema.NewInputValue("input", "", schema.NonNullType(schema.NamedType("PostPhotoInput"))))).
		AddField(schema.NewField("addUser", "", schema.NonNullType(schema.NamedType("User"))).
			AddArgument(schema.NewInputValue("githubLogin", "", schema.NonNullType(schema.NamedType("ID")))).
			AddArgument(schema.NewInputValue("name", "", schema.NamedType("String")))).
		AddField(schema.NewField("tagPhoto", "", schema.NonNullType(schema.NamedType("Photo"))).
			AddArgument(schema.NewInputValue("githubLogin", "", schema.NonNullType(schema.NamedType("ID")))).
			AddArgument(schema.NewInputValue("photoID", "", schema.NonNullType(schema.NamedType("ID"))))).
		AddField(schema.NewField("addFriendship", "", schema.NonNullType(schema.NamedType("Friendship"))).
			AddArgument(schema.NewInputValue("logins", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("ID")))))).
			AddArgument(schema.NewInputValue("howLong", "", schema.NamedType("String"))).
			AddArgument(schema.NewInputValue("whereWeMet", "", schema.NamedType("String")))))

	s.AddType(schema.NewType("Subscription", schema.TypeKindObject, "").
		AddField(schema.NewField("newPhoto", "", schema.NonNullType(schema.NamedType("Photo"))).
			AddArgument(schema.NewInputValue("category", "", schema.NamedType("PhotoCategory")))).
		AddField(schema.NewField("newUser", "", schema.NonNullType(schema.NamedType("User")))).
		AddField(schema.NewField("newFriendship", "", schema.NonNullType(schema.NamedType("Friendship")))))

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// listField declares a non-null list field carrying the full set of list
// modifiers: filter, paging, sorting.
func listField(name, elem string, withFilter bool) *schema.Field {
	f := pagedSortedField(name, elem)
	if withFilter {
		// Prepend filter so the argument order reads filter, paging, sorting.
		f.Arguments = append([]*schema.InputValue{
			schema.NewInputValue("filter", "", schema.NamedType("PhotoFilter")),
		}, f.Arguments...)
	}
	return f
}

// pagedSortedField declares a non-null list field with paging and sorting.
// The default window applies when paging is omitted; an explicit null means
// no window at all.
func pagedSortedField(name, elem string) *schema.Field {
	return schema.NewField(name, "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType(elem))))).
		AddArgument(schema.NewInputValue("paging", "", schema.NamedType("DataPage")).
			SetDefault(map[string]any{"first": 25, "start": 0})).
		AddArgument(schema.NewInputValue("sorting", "", schema.NamedType("DataSort")))
}
