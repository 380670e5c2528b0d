// Package scanner walks a scene graph and collects candidate file
// references: every parameter declared as a file path plus any value that
// looks like one. Classification of the collected references is deferred
// to the pattern package.
package scanner
