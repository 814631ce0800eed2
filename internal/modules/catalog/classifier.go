package catalog

import "strings"

// PetSubtype is the kind of animal a pet listing page shows.
type PetSubtype string

const (
	SubtypeDog     PetSubtype = "dog"
	SubtypeCat     PetSubtype = "cat"
	SubtypeRabbit  PetSubtype = "rabbit"
	SubtypeFish    PetSubtype = "fish"
	SubtypeReptile PetSubtype = "reptile"
	SubtypeBird    PetSubtype = "bird"
)

var PetSubtypes = []PetSubtype{SubtypeDog, SubtypeCat, SubtypeRabbit, SubtypeFish, SubtypeReptile, SubtypeBird}

var subtypeAliases = map[string]PetSubtype{
	"dog": SubtypeDog, "dogs": SubtypeDog, "perros": SubtypeDog,
	"cat": SubtypeCat, "cats": SubtypeCat, "gatos": SubtypeCat,
	"rabbit": SubtypeRabbit, "rabbits": SubtypeRabbit, "conejos": SubtypeRabbit,
	"fish": SubtypeFish, "peces": SubtypeFish,
	"reptile": SubtypeReptile, "reptiles": SubtypeReptile, "iguanas": SubtypeReptile,
	"bird": SubtypeBird, "birds": SubtypeBird, "aves": SubtypeBird,
}

// ParsePetSubtype resolves a subtype name or route slug.
func ParsePetSubtype(s string) (PetSubtype, bool) {
	st, ok := subtypeAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// keywords are matched as lowercase substrings of the named field.
type keywords struct {
	name, description, breed []string
}

// subtypeKeywords is a closed heuristic, not a classifier that can be trusted:
// a toy named "Perro de juguete" would be listed with the dogs if it were a pet,
// and "ave" also matches words like "suave".
var subtypeKeywords = map[PetSubtype]keywords{
	SubtypeDog: {
		name:        []string{"perro", "cachorro"},
		description: []string{"perro", "cachorro"},
		breed:       []string{"retriever", "pastor", "labrador", "beagle", "bulldog"},
	},
	SubtypeCat: {
		name:        []string{"gato", "gatito"},
		description: []string{"gato", "felino"},
		breed:       []string{"persa", "siamés", "maine"},
	},
	SubtypeRabbit: {
		name:        []string{"conejo"},
		description: []string{"conejo"},
		breed:       []string{"holland", "angora", "rex"},
	},
	SubtypeFish: {
		name:        []string{"pez", "peces"},
		description: []string{"pez"},
		breed:       []string{"betta", "goldfish", "neón"},
	},
	SubtypeReptile: {
		name:        []string{"iguana", "gecko"},
		description: []string{"iguana", "reptil"},
		breed:       []string{"iguana", "gecko"},
	},
	SubtypeBird: {
		name:        []string{"canario", "periquito", "cacatúa"},
		description: []string{"ave"},
		breed:       []string{"canario", "periquito"},
	},
}

// Matches reports whether the pet p belongs to subtype st. An explicit
// subcategory set by the admin form wins; otherwise the keyword table decides.
func (st PetSubtype) Matches(p Product) bool {
	pet, ok := p.AsPet()
	if !ok {
		return false
	}
	if sub, ok := ParsePetSubtype(p.Subcategory); ok {
		return sub == st
	}
	kw, ok := subtypeKeywords[st]
	if !ok {
		return false
	}
	return containsAny(p.Name, kw.name) ||
		containsAny(p.Description, kw.description) ||
		containsAny(pet.Breed, kw.breed)
}

func containsAny(field string, words []string) bool {
	field = strings.ToLower(field)
	for _, w := range words {
		if strings.Contains(field, w) {
			return true
		}
	}
	return false
}
