// Package textutil holds the small text helpers shared by the CSV readers and
// matchers: repairing undecodable input and building case-insensitive keys.
package textutil
