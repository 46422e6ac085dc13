// Package progress implements the per-session progress hub.
//
// The hub:
//   - Stores the latest ProgressEvent of every open session
//   - Replays that event to late subscribers before live events
//   - Fans events out through bounded drop-oldest queues so a slow
//     subscriber never stalls step execution
//   - Answers side-effect-free polls for the fallback delivery path
package progress
