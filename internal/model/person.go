package model

import "fmt"

// Person identifies one of the four flatmates. The set is fixed;
// there is no dynamic membership.
type Person string

const (
	PersonMattia  Person = "Mattia"
	PersonMartina Person = "Martina"
	PersonShapa   Person = "Shapa"
	PersonMariana Person = "Mariana"
)

// People lists every flatmate in display order.
var People = []Person{PersonMattia, PersonMartina, PersonShapa, PersonMariana}

// Valid reports whether p is one of the known flatmates.
func (p Person) Valid() bool {
	switch p {
	case PersonMattia, PersonMartina, PersonShapa, PersonMariana:
		return true
	}
	return false
}

// ParsePerson converts a wire/config string into a Person.
func ParsePerson(s string) (Person, error) {
	p := Person(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown person %q", s)
	}
	return p, nil
}
