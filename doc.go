// Package sitebook provides the reconciliation core of a construction
// company's books: a cash ledger with a running balance, the stock of
// materials, and the commissions due to staff, kept consistent with each
// other.
//
// The core functionalities include:
//   - Category Registry: user-named categories, some of which hold a fixed
//     system link (commission, vendor payment, construction material...)
//     used to tag generated transactions.
//   - Ledger: the chronological list of Income, Expense and AmountOut
//     transactions with their running balance.
//   - Stock: purchases and issues of materials, from which the quantity on
//     hand and the latest unit price are derived.
//   - Bridge: purchases from a vendor and issues to a project post the
//     matching Expense to the ledger.
//   - Commissions: due commissions are settled by a single ledger Expense.
//
// A Book owns all of these and persists them in a store.Store, one JSON
// document per collection.
package sitebook
