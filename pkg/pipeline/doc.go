// Package pipeline implements the four task functions phase 4 registers
// with the task runtime (§4.6): fetch_content, extract_content,
// store_content, and cleanup_cache. It selects fetchers and extractors from
// the registry, drives an item's processing_state across the fetch/extract/
// store/complete boundary, and resolves Open Question 1's stored-vs-completed
// split by checking for outstanding recursive extractions before promoting
// an item to completed.
package pipeline
