package cnf

import "fmt"

// And emits clauses forcing out == (a AND c).
func (b *Builder) And(out, a, c int) error {
	if err := b.checkLits(out, a, c); err != nil {
		return err
	}
	return b.addAll(
		[]int{-a, -c, out},
		[]int{a, -out},
		[]int{c, -out},
	)
}

// Or emits clauses forcing out == (a OR c).
func (b *Builder) Or(out, a, c int) error {
	if err := b.checkLits(out, a, c); err != nil {
		return err
	}
	return b.addAll(
		[]int{a, c, -out},
		[]int{-a, out},
		[]int{-c, out},
	)
}

// Xor emits clauses forcing out == (a XOR c).
func (b *Builder) Xor(out, a, c int) error {
	if err := b.checkLits(out, a, c); err != nil {
		return err
	}
	return b.addAll(
		[]int{-a, -c, -out},
		[]int{a, c, -out},
		[]int{a, -c, out},
		[]int{-a, c, out},
	)
}

// Iff emits clauses forcing a == c.
func (b *Builder) Iff(a, c int) error {
	if err := b.checkLits(a, c); err != nil {
		return err
	}
	return b.addAll(
		[]int{-a, c},
		[]int{a, -c},
	)
}

// ExactlyOne emits a pairwise encoding forcing exactly one of vars to be
// true: an at-least-one clause plus a NAND clause for every pair. Suitable
// for the small selector sets spec.md §4.4 describes (candidate gate
// libraries of size O(w^3)).
func (b *Builder) ExactlyOne(vars []int) error {
	if len(vars) == 0 {
		return fmt.Errorf("%w: ExactlyOne requires a non-empty variable set", ErrInvalidLiteral)
	}
	if err := b.checkLits(vars...); err != nil {
		return err
	}
	if err := b.AddClause(vars...); err != nil {
		return err
	}
	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			if err := b.AddClause(-vars[i], -vars[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

// AtMostK emits a sequential-counter encoding (Sinz 2005) forcing at most k
// of vars to be true, introducing O(n*k) auxiliary variables and clauses —
// far cheaper than the pairwise encoding for larger n. If len(vars) <= k the
// constraint is trivially satisfied and no clauses are emitted.
func (b *Builder) AtMostK(vars []int, k int) error {
	if err := b.checkLits(vars...); err != nil {
		return err
	}
	n := len(vars)
	if k < 0 {
		return fmt.Errorf("%w: AtMostK requires k >= 0", ErrInvalidLiteral)
	}
	if n <= k {
		return nil
	}
	if k == 0 {
		for _, v := range vars {
			if err := b.AddClause(-v); err != nil {
				return err
			}
		}
		return nil
	}

	// s[i][j]: "at least j+1 of vars[0..i] (inclusive) are true", i in
	// [0, n-2], j in [0, k-1] (0-indexed translation of the 1-indexed
	// textbook presentation).
	s := make([][]int, n-1)
	for i := range s {
		s[i] = b.NewVars(k)
	}

	// i = 0
	if err := b.AddClause(-vars[0], s[0][0]); err != nil {
		return err
	}
	for j := 1; j < k; j++ {
		if err := b.AddClause(-s[0][j]); err != nil {
			return err
		}
	}

	for i := 1; i < n-1; i++ {
		if err := b.AddClause(-vars[i], s[i][0]); err != nil {
			return err
		}
		if err := b.AddClause(-s[i-1][0], s[i][0]); err != nil {
			return err
		}
		for j := 1; j < k; j++ {
			if err := b.AddClause(-vars[i], -s[i-1][j-1], s[i][j]); err != nil {
				return err
			}
			if err := b.AddClause(-s[i-1][j], s[i][j]); err != nil {
				return err
			}
		}
		if err := b.AddClause(-vars[i], -s[i-1][k-1]); err != nil {
			return err
		}
	}
	if err := b.AddClause(-vars[n-1], -s[n-2][k-1]); err != nil {
		return err
	}
	return nil
}

func (b *Builder) checkLits(lits ...int) error {
	for _, l := range lits {
		if err := b.checkLit(l); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) addAll(clauses ...[]int) error {
	for _, c := range clauses {
		if err := b.AddClause(c...); err != nil {
			return err
		}
	}
	return nil
}
