// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the FSInfo struct, which stores file system metadata.
//
// The path connects an in-memory definition back to its source so loading
// and compilation errors can name the file at fault.
package model

// FSInfo records where a definition was loaded from.
type FSInfo struct {
	FilePath string
}

// NewFSInfo creates an FSInfo for the given path.
func NewFSInfo(filePath string) *FSInfo {
	return &FSInfo{
		FilePath: filePath,
	}
}

// String returns the file path, or "<inline>" for definitions that were not
// loaded from disk.
func (f *FSInfo) String() string {
	if f == nil || f.FilePath == "" {
		return "<inline>"
	}
	return f.FilePath
}
