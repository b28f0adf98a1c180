//go:build !vmathdebug

package vec3

const checkPreconditions = false
