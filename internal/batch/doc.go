// Package batch implements the batch report Job Supervisor.
//
// The Job Supervisor:
//   - Creates batch jobs and owns the in-memory job table
//   - Runs one unit of work per report item, concurrently, with a
//     configurable bound on in-flight items per job
//   - Isolates failures at the item boundary: one failed render never
//     aborts the siblings
//   - Streams progress events to the owning client and finalizes the job
//     to completed or failed once every item has an outcome
package batch
