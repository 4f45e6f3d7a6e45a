package apsp

// Inf marks an unreachable pair. It is chosen so that 2·Inf still fits in an
// int32; sums involving Inf are never formed.
const Inf int32 = 1_000_000_000

// The four block kernels of the blocked Floyd–Warshall update. All of them
// work in place on row-major storage with leading dimension ld (the physical
// block edge), over the live region given by the bs/hI/wJ extents. The
// strip and inner kernels run their relaxation loops (i, k, j): the Inf check
// on the left operand hoists out of the innermost loop and the j-indexed
// cells stay contiguous. fwBlock keeps k as the outermost loop, as the
// in-place Floyd–Warshall over a single block needs.

// fwBlock runs the scalar Floyd–Warshall inside the pivot block dkk (bs×bs).
func fwBlock(dkk []int32, bs, ld int) {
	for k := 0; k < bs; k++ {
		for i := 0; i < bs; i++ {
			dik := dkk[i*ld+k]
			if dik == Inf {
				continue
			}
			for j := 0; j < bs; j++ {
				dkj := dkk[k*ld+j]
				if dkj == Inf {
					continue
				}
				if via := dik + dkj; via < dkk[i*ld+j] {
					dkk[i*ld+j] = via
				}
			}
		}
	}
}

// fwRow relaxes the row block dkJ (bs×wJ) against the pivot dkk (bs×bs).
func fwRow(dkk, dkJ []int32, bs, wJ, ld int) {
	for i := 0; i < bs; i++ {
		for k := 0; k < bs; k++ {
			dik := dkk[i*ld+k]
			if dik == Inf {
				continue
			}
			for j := 0; j < wJ; j++ {
				dkj := dkJ[k*ld+j]
				if dkj == Inf {
					continue
				}
				if via := dik + dkj; via < dkJ[i*ld+j] {
					dkJ[i*ld+j] = via
				}
			}
		}
	}
}

// fwCol relaxes the column block dik (hI×bs) against the pivot dkk (bs×bs).
func fwCol(dik, dkk []int32, hI, bs, ld int) {
	for i := 0; i < hI; i++ {
		for k := 0; k < bs; k++ {
			ik := dik[i*ld+k]
			if ik == Inf {
				continue
			}
			for j := 0; j < bs; j++ {
				kj := dkk[k*ld+j]
				if kj == Inf {
					continue
				}
				if via := ik + kj; via < dik[i*ld+j] {
					dik[i*ld+j] = via
				}
			}
		}
	}
}

// fwInner relaxes the inner block dij (hI×wJ) against the column block dik
// (hI×bs) and the row block dkJ (bs×wJ).
func fwInner(dik, dkJ, dij []int32, hI, wJ, bs, ld int) {
	for i := 0; i < hI; i++ {
		for k := 0; k < bs; k++ {
			ik := dik[i*ld+k]
			if ik == Inf {
				continue
			}
			for j := 0; j < wJ; j++ {
				kj := dkJ[k*ld+j]
				if kj == Inf {
					continue
				}
				if via := ik + kj; via < dij[i*ld+j] {
					dij[i*ld+j] = via
				}
			}
		}
	}
}
