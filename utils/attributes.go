package utils

// AttributeMap is a loosely typed set of component attributes as read from a config file.
type AttributeMap map[string]interface{}

// Has returns whether the attribute is present.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// String returns the attribute as a string, or the empty string when absent or of another type.
func (am AttributeMap) String(name string) string {
	s, _ := am[name].(string)
	return s
}
