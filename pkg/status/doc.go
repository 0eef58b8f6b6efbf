/*
Package status tracks the outcome of a sort run and reports it.

	            +-------------+
	            |   Summary   |
	            |  (Tracking) |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|  Buckets  |           |  Logs   |
	|  (Table)  |           | (UI/UX) |
	+-----------+           +---------+

🎯 Purpose:
- Counts copied, failed and skipped files while copy tasks run
- Remembers every failure with its path and cause
- Renders a one-line summary and a per-bucket table

🔄 Flow:
1. The sorter creates a Summary when sorting starts
2. Copy tasks record their outcome concurrently
3. The sorter finishes the Summary once every task has settled
4. The CLI prints the summary and picks an exit code from it

🤝 Interfaces:
- Formatter: turns counts and errors into display strings
- Summary: safe for concurrent use by copy tasks
*/
package status
