// Package paths provides filesystem-location helpers shared by the rest
// of the tool: the user's home directory and the XDG base directories
// that Steam and the fix-up package conventionally live under.
//
// It wraps github.com/adrg/xdg for XDG Base Directory Specification
// compliance, so overriding XDG_DATA_HOME or XDG_CONFIG_HOME behaves the
// way Steam itself would see it.
package paths
