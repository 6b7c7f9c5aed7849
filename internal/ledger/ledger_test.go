package ledger

import (
	"math/big"
	"testing"

	"github.com/glmrscan/transfer-indexer/internal/model"
)

func TestAccount_LazyCreation(t *testing.T) {
	l := New(nil)

	a := l.Account("A")
	if a.ID != "A" {
		t.Errorf("ID = %s, want A", a.ID)
	}
	if a.Balance.Sign() != 0 {
		t.Errorf("Balance = %s, want 0", a.Balance)
	}

	// Same id resolves to the same account.
	if l.Account("A") != a {
		t.Error("Account(\"A\") returned a different instance")
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestAccount_SeededBalancePreserved(t *testing.T) {
	seeded := &model.Account{ID: "A", Balance: big.NewInt(500)}
	l := New(map[string]*model.Account{"A": seeded})

	a := l.Account("A")
	if a != seeded {
		t.Fatal("seeded account not reused")
	}
	if a.Balance.Int64() != 500 {
		t.Errorf("Balance = %s, want 500", a.Balance)
	}
}

func TestApply(t *testing.T) {
	l := New(nil)
	from := l.Account("A")
	to := l.Account("B")

	l.Apply(from, to, big.NewInt(100))

	if from.Balance.Int64() != -100 {
		t.Errorf("from.Balance = %s, want -100", from.Balance)
	}
	if to.Balance.Int64() != 100 {
		t.Errorf("to.Balance = %s, want 100", to.Balance)
	}
}

func TestApply_SelfTransferNetsToZero(t *testing.T) {
	l := New(map[string]*model.Account{
		"A": {ID: "A", Balance: big.NewInt(42)},
	})
	a := l.Account("A")

	l.Apply(a, a, big.NewInt(100))

	if a.Balance.Int64() != 42 {
		t.Errorf("Balance after self-transfer = %s, want 42", a.Balance)
	}
}

func TestApply_NegativeBalancePermitted(t *testing.T) {
	// Out-of-order feeds can debit before the credit arrives; the ledger
	// records it rather than clamping.
	l := New(nil)
	from := l.Account("A")
	to := l.Account("B")

	l.Apply(from, to, big.NewInt(1))
	l.Apply(from, to, big.NewInt(1))

	if from.Balance.Int64() != -2 {
		t.Errorf("from.Balance = %s, want -2", from.Balance)
	}
}

func TestApply_ConservesSumOverClosedSet(t *testing.T) {
	l := New(map[string]*model.Account{
		"A": {ID: "A", Balance: big.NewInt(300)},
		"B": {ID: "B", Balance: big.NewInt(200)},
		"C": {ID: "C", Balance: big.NewInt(-50)},
	})

	l.Apply(l.Account("A"), l.Account("B"), big.NewInt(120))
	l.Apply(l.Account("B"), l.Account("C"), big.NewInt(70))
	l.Apply(l.Account("C"), l.Account("A"), big.NewInt(10))

	sum := new(big.Int)
	for _, a := range l.Accounts() {
		sum.Add(sum, a.Balance)
	}
	if sum.Int64() != 450 {
		t.Errorf("sum of balances = %s, want 450", sum)
	}
}

func TestApply_LargeAmounts(t *testing.T) {
	// 2^100 wei-scale amounts must not truncate.
	amount := new(big.Int).Lsh(big.NewInt(1), 100)

	l := New(nil)
	from := l.Account("A")
	to := l.Account("B")
	l.Apply(from, to, amount)

	if to.Balance.Cmp(amount) != 0 {
		t.Errorf("to.Balance = %s, want %s", to.Balance, amount)
	}
	if from.Balance.Cmp(new(big.Int).Neg(amount)) != 0 {
		t.Errorf("from.Balance = %s, want -%s", from.Balance, amount)
	}
}
