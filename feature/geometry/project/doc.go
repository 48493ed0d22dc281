// Package project handles .ppr project files: discovery of the unique
// project file in a working directory and loading of the project's name,
// slug and database settings.
package project
