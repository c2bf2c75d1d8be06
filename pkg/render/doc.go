// Package render defines the contract between the registration component and
// its presentation layers: the Renderer interface, the View a renderer draws,
// per-request RenderOptions, and helpers for error and hidden-field output.
package render
