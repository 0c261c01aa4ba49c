// Package id derives session identifiers from the project name, the command
// signature, and the creation time. Ids are unique enough in practice;
// collisions are accepted as negligible rather than eliminated.
package id
