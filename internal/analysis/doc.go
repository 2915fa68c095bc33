// Package analysis turns a relaxed chain and its energy history into
// numbers a user can read.
//
//   - [NewProfile]: energy against arc length along the path
//   - [Profile.Saddle]: highest image, a saddle point estimate
//   - [ConvergenceRate]: geometric rate fitted to the energy history
//   - [ProfileToASCII] and [PathToASCII]: terminal plots
//
// # Barrier heights
//
//	prof := analysis.NewProfile(chain.Points(), field)
//	s := prof.Saddle()
//	fmt.Println(s.Forward, s.Backward)
package analysis
