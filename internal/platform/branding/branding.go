// Package branding centralizes user-facing product naming.
package branding

// AppName is the product name rendered in page titles and chrome.
const AppName = "TimeLogic"
