// Package treasury is a spending-policy layer gating outbound transfers from
// a shared custodial account. A policy instance fixes who may execute, who
// must approve, which assets, destinations and amounts are allowed, over what
// validity window and usage budget; permitted instructions are forwarded to
// the external custodian for settlement.
//
// Six policy kinds share one transaction lifecycle: direct transfer, swap,
// vesting release, self-service claim, referral reward and a generic
// pass-through. Additional kinds plug in through the variant registry.
package treasury
