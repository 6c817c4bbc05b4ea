// Package settings reads and patches the hook configuration in a
// configuration root's settings.json.
//
// Only one field is ever written: the command of the first hook in the first
// UserPromptSubmit entry. The rest of the document passes through untouched
// apart from re-indentation. Comments and trailing commas are accepted on
// read and dropped on write.
package settings
