// Package pkg provides the core libraries for Planshift document
// transformation.
//
// # Overview
//
// Planshift moves and rotates whole building-design documents while keeping
// their derived state consistent. The pkg directory is organized into four
// main areas:
//
//  1. [geom] and [model] - Vocabulary (rigid transforms, elements, markers, views)
//  2. [document] - Persistence (memory, file, and mongo stores with one
//     transaction contract)
//  3. [engine] - The staged transformation pipeline
//  4. [export] - Join-graph rendering for inspection
//
// The engine depends only on the document.Repository interface, so any
// backend that honors the transaction contract can be transformed.
package pkg
