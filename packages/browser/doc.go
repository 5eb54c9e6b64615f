// Package browser defines the capability interface a browser automation
// backend must provide: element lookup, interaction, script execution,
// and screenshots. Page objects and the scenario runner depend only on
// this interface, so any WebDriver-equivalent client can be substituted
// without touching call sites.
package browser
