// Package student contains the domain model of a single student record.
//
// This is the core of the gradebook. The package defines:
//
//   - Entity: Student (identifier, name, ordered grades)
//   - Derived values: Average and Performance, computed on demand and never stored
//   - Label policies: LabelPolicy, selecting how an average maps to a label
//
// # Invariants
//
//  1. ID and Name are non-empty after trimming and never contain line breaks
//  2. ID never changes once the record exists
//  3. Every stored grade lies in [0, 100]; a rejected grade leaves the record unchanged
//
// # Usage
//
//	st, err := student.NewStudent("S1", "Alice")
//	if err != nil {
//	    return err
//	}
//	_ = st.AddGrade(95)
//	_ = st.AddGrade(85)
//	st.Average()                          // 90
//	st.Performance(student.PolicyTiered)  // "Excellent"
//	st.Performance(student.PolicyPassFail) // "PASS"
//
// The package has no external dependencies.
package student
