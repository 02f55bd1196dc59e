/*
Package pipeline drives one transform run end to end for linerc.

	 +---------------+
	 | EncodingProbe |
	 +-------+-------+
	         |
	+--------+--------+
	|    Pipeline     |
	| (stream/reverse)|
	+--------+--------+
	         |
	 +-------+------+        +----------+
	 |  Transform   +------->+ Staging  |
	 |  (per line)  |        | (atomic) |
	 +--------------+        +----------+

🎯 Purpose:
- Reads the input with the probed encoding
- Applies the chosen transform to each line
- Streams output to a staged file, committed atomically
- Classifies failures into a small, matchable taxonomy

🔄 Flow:
1. Streamable transforms read one line at a time and never hold the file
2. Line reversal materializes the file, after an explicit confirmation
3. Ordinals are assigned in original file order, even when output order differs
4. Commit negotiates overwrite conflicts through the injected prompter

⚡ Key Responsibilities:
- Newline placement is preserved per line (identity runs round-trip)
- lines_written never exceeds lines_read
- Every failure path removes the staging file before propagating
- Cancellation is an outcome (empty committed path), never an error

🤝 Interfaces:
- Prompter: the blocking decisions a run can suspend on
- staging.ConflictResolver: the overwrite-negotiation subset

📝 Design Philosophy:
The pipeline never retries and never guesses. Anything that needs a
human decision (overwrite, alternate path, whole-file load) suspends on
the prompter; anything that fails leaves the filesystem exactly as it
was and returns a classified error for the caller to act on.
*/
package pipeline
