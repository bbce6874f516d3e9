// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Package interval implements the genomic-interval plumbing shared by the TSR
  caller: parsing of BED and BED6 text, region strings, read-only
  interval-unions for target restriction, and a growing interval-union for
  tracking occupied positions during region selection.
  Overlapping intervals are always merged, never tracked separately.
  It assumes every position fits in a PosType, which is currently defined as
  int32 since that's what BAM files are limited to.
*/
package interval
