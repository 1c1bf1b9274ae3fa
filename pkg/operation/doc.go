/*
Package operation implements the core business logic of a backup run.

	+--------------+
	|  Operation   |
	| (Core Logic) |
	+------+-------+
	       |
	+------+-------+
	|  Merge-Copy  |
	|   (Engine)   |
	+--------------+

🎯 Purpose:
- Realizes a minimized path set onto a destination tree
- Merges into pre-existing destination directories file by file
- Resolves per-file conflicts according to the configured policy
- Stages and packs compressed archives

🔄 Flow:
1. Receives the minimized sources from the pathset package
2. Dispatches each source: file copy, tree copy, or recursive merge
3. Reports every decision via status entries and the user logger
4. Archive mode stages the same engine into a scratch directory first

📝 Design Philosophy:
The engine owns the destination tree for the duration of a run and nothing
else: filtering and minimizing happen upstream, prompting is injected as a
Confirmer, packing is delegated to the archive package. Execution is
strictly sequential; a backup is an interactive CLI run, not a service.
*/
package operation
