/*Package cdr calls centromere dip regions (CDRs) from a binned methylation
  signal.  A CDR is a localized depression in the per-bin average: the signal
  is split into contiguous runs (no coordinate gaps), valleys are located in
  each run by a topographic-prominence criterion, each candidate's depth is
  measured against the median of its flanking windows in isolation from
  neighboring candidates, and candidates passing a per-chromosome height
  threshold are optionally padded and merged into the final interval set.
  Chromosomes are independent and processed in parallel.
*/
package cdr
