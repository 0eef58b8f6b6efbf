/*
Package operation runs a sort: it validates the source and destination,
walks the source tree and copies every file into its extension bucket.

	+-------------+
	| Validating  |---- ValidationError ----> exit 1
	+------+------+
	       |
	+------+------+
	|   Sorting   |  walk.Files -> []walk.Entry
	|             |  Runner: one copier.Copy per entry
	+------+------+
	       |
	+------+------+
	|    Done     |  status.Summary (copied / failed / skipped)
	+-------------+

🔄 Flow:
 1. Validate resolves both paths, checks the source is a directory and
    creates the destination
 2. The whole tree is walked before the first copy starts
 3. Every file gets its own copy task; tasks never cancel each other
 4. The run is done once every task has settled, successful or not

⚡ Failure isolation:
- A subtree that cannot be walked is logged and skipped
- A file that cannot be copied is logged and counted
- Only a ValidationError stops a run before it starts

🔍 Example:

	summary, err := operation.Run(ctx, "./photos", "./sorted", operation.Options{Jobs: 8})
	if err != nil {
		return err
	}
	summary.Log(ctx)
*/
package operation
