package payment

import "testing"

// TestMinorUnits はセント単位への変換を検証する。
func TestMinorUnits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		price float64
		want  int64
	}{
		{"整数ドルは100倍になること", 5.0, 500},
		{"セント端数が保持されること", 12.34, 1234},
		{"浮動小数点の誤差は切り捨てられること", 19.99, 1998},
		{"ゼロはゼロのままであること", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MinorUnits(tt.price); got != tt.want {
				t.Errorf("MinorUnits(%v) = %d, want %d", tt.price, got, tt.want)
			}
		})
	}
}

// TestNewStripe はStripeゲートウェイの生成を検証する。
func TestNewStripe(t *testing.T) {
	t.Parallel()

	t.Run("シークレットキーを指定した場合に生成できること", func(t *testing.T) {
		t.Parallel()

		gw, err := NewStripe("sk_test_dummy")
		if err != nil {
			t.Fatalf("NewStripe()でエラーが発生: %v", err)
		}
		if gw == nil {
			t.Fatal("NewStripe()がnilを返した")
		}
	})

	t.Run("シークレットキーが空の場合にエラーが返ること", func(t *testing.T) {
		t.Parallel()

		if _, err := NewStripe(""); err == nil {
			t.Fatal("空のシークレットキーでNewStripe()がエラーを返すべき")
		}
	})
}
