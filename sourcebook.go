// Package sourcebook provides a local, CLI-based tool for chatting with
// collections of documents. Users gather sources (files, URLs, pasted text)
// into notebooks, generate structured summaries with a configurable AI
// provider, and ask questions that are answered from the source content with
// citations back into the material.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, ollama/).
package sourcebook
