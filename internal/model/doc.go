// Package model defines the data structures exchanged with the analysis backend.
//
// This package contains the following main types:
//   - AnalysisResult: The aggregate accumulating all three analysis stages
//   - CriticalAnalysis: The stage-2 section, present after a critical analysis
//   - AdditionalAnalysis: The stage-3 section, present after an additional analysis
//   - HistoryItem and Perspective: Auxiliary listing types
//
// Design decision: Several fields of older backend responses arrive as plain
// strings (quotes, people, hidden premises, contradictions, hooking points) or
// as a flat object (content direction). These are resolved once while decoding
// JSON into a single normalized representation that records which shape was
// received. Consumers such as the report formatter never inspect raw shapes.
package model
