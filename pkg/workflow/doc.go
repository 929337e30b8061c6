// Package workflow reads and writes workflow documents: the observed job
// records of one workflow run plus its dependency map.
//
// # Document Shape
//
// A workflow document has two parts:
//
//	{
//	  "name": "nightly-etl",
//	  "jobs": [
//	    {"entityName": "extract", "submitTime": 0, "elapsedTime": 10000, "status": true},
//	    {"entityName": "load", "submitTime": 5000, "elapsedTime": 10000, "status": false}
//	  ],
//	  "dag": {"extract": ["load"], "load": ["report"]}
//	}
//
// Jobs carry millisecond timestamps; status is true once the job has
// finished. The dag maps each source job name to the names it feeds. Names
// in the dag need not match an observed job: such references become
// dangling markers in the layout.
//
// # Ordering
//
// Lane assignment breaks predecessor ties by the order sources appear in
// the dag, so every decoder here keeps document order instead of going
// through a Go map. [DAG] implements json.Unmarshaler by streaming tokens,
// yaml.Unmarshaler by walking the mapping node, and TOML documents are
// reordered from the decoder's key metadata.
//
// # Formats
//
// [Read] accepts JSON, YAML and TOML; [ReadFile] picks the format from the
// file extension. [Write] emits canonical JSON, which is also what
// [Canonical] hashes for cache keys.
//
// Ambari stores the dag inside a workflow context string and the jobs in a
// separate array. [FromAmbari] accepts that split form directly.
package workflow
