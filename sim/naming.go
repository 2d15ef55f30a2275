package sim

import (
	"strconv"
	"strings"
)

// NameMustBeValid panics if the name does not follow the naming convention.
// A name is a series of dot-separated tokens, each a capitalized CamelCase
// element name optionally followed by square-bracket indices, such as
// "Basin.Reach[2].Outlet".
func NameMustBeValid(name string) {
	defer func() {
		if r := recover(); r != nil {
			panic("name " + name + " is not valid: " + r.(string))
		}
	}()

	for _, token := range strings.Split(name, ".") {
		tokenMustBeValid(token)
	}
}

func tokenMustBeValid(token string) {
	elem := token
	if i := strings.IndexByte(token, '['); i >= 0 {
		elem = token[:i]
		indicesMustBeValid(token[i:])
	}

	if elem == "" {
		panic("name element must not be empty")
	}

	for _, c := range []string{"_", "\"", "'", "-", "]"} {
		if strings.Contains(elem, c) {
			panic("name element must not contain " + c)
		}
	}

	if elem[0] < 'A' || elem[0] > 'Z' {
		panic("name element must start with a capital letter")
	}
}

func indicesMustBeValid(s string) {
	for len(s) > 0 {
		if s[0] != '[' {
			panic("name index must use square brackets")
		}

		end := strings.IndexByte(s, ']')
		if end < 0 {
			panic("name bracket must match")
		}

		if _, err := strconv.Atoi(s[1:end]); err != nil {
			panic("name index must be an integer")
		}

		s = s[end+1:]
	}
}

// BuildName builds a name from a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex builds a name from a parent name, an element name, and
// an index.
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName, elementName+"["+strconv.Itoa(index)+"]")
}
