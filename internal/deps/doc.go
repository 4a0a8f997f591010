// Package deps locates the external programs formatrisk shells out to.
package deps
