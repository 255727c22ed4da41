package marketplace

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/payment/mock_payment"
	"github.com/terracapital/marketplace/lib/registry"
	"github.com/terracapital/marketplace/lib/state"
	"github.com/terracapital/marketplace/lib/state/memstore"
)

func amountEq(v int64) gomock.Matcher {
	return decimalMatcher{decimal.NewFromInt(v)}
}

type decimalMatcher struct {
	want decimal.Decimal
}

func (m decimalMatcher) Matches(x interface{}) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string {
	return "equals " + m.want.String()
}

type mockedCoordinator struct {
	authority   *auth.Authority
	store       *memstore.Store
	registry    *registry.Registry
	gateway     *mock_payment.MockGateway
	coordinator *Coordinator
	buyerProof  *auth.Proof
	assetID     uint64
}

func newMockedCoordinator(t *testing.T, ctrl *gomock.Controller, price, feeBps int64, liquidityShare *int64) *mockedCoordinator {
	a := auth.NewAuthority([]byte("secret"), time.Hour, time.Minute)
	proof := func(p market.Principal) *auth.Proof {
		token, err := a.Issue(p)
		require.NoError(t, err)
		pr, err := a.Verify(token)
		require.NoError(t, err)
		return pr
	}
	m := &mockedCoordinator{
		authority:  a,
		store:      memstore.New(),
		registry:   registry.New(registryID, a),
		gateway:    mock_payment.NewMockGateway(ctrl),
		buyerProof: proof(buyer),
	}
	m.coordinator = New(proof(coordinator), a, m.registry, m.gateway)
	err := m.store.RunInTx(context.Background(), func(ctx context.Context, tx state.Tx) error {
		if err := m.registry.Init(ctx, tx, proof(admin)); err != nil {
			return err
		}
		if err := m.registry.SetCoordinator(ctx, tx, proof(admin), coordinator); err != nil {
			return err
		}
		if err := m.coordinator.Init(ctx, tx, proof(admin), registryID, usdc, treasury, feeBps); err != nil {
			return err
		}
		if liquidityShare != nil {
			destination := pool
			if err := m.coordinator.SetLiquidityConfig(ctx, tx, proof(admin), &destination, *liquidityShare); err != nil {
				return err
			}
		}
		var err error
		m.assetID, err = m.registry.CreateAsset(ctx, tx, proof(seller), seller, "farmland", "North field", decimal.NewFromInt(price), decimal.NewFromInt(1000))
		return err
	})
	require.NoError(t, err)
	return m
}

func (m *mockedCoordinator) buy(qty int64) (market.PurchaseReceipt, error) {
	var receipt market.PurchaseReceipt
	err := m.store.RunInTx(context.Background(), func(ctx context.Context, tx state.Tx) error {
		var err error
		receipt, err = m.coordinator.BuyTokens(ctx, tx, m.buyerProof, buyer, m.assetID, decimal.NewFromInt(qty))
		return err
	})
	return receipt, err
}

func TestTransferLegsInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	share := int64(4000)
	m := newMockedCoordinator(t, ctrl, 100, 250, &share)

	gomock.InOrder(
		m.gateway.EXPECT().Transfer(gomock.Any(), gomock.Any(), usdc, m.buyerProof, seller, amountEq(975)).Return(nil),
		m.gateway.EXPECT().Transfer(gomock.Any(), gomock.Any(), usdc, m.buyerProof, treasury, amountEq(15)).Return(nil),
		m.gateway.EXPECT().Transfer(gomock.Any(), gomock.Any(), usdc, m.buyerProof, pool, amountEq(10)).Return(nil),
	)
	receipt, err := m.buy(10)
	assert.NoError(t, err)
	assert.Equal(t, "25", receipt.FeePaid.String())
}

func TestZeroLegsAreSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// fee of 1 with a 40% liquidity share: liquidity leg truncates to 0
	share := int64(4000)
	m := newMockedCoordinator(t, ctrl, 40, 250, &share)
	gomock.InOrder(
		m.gateway.EXPECT().Transfer(gomock.Any(), gomock.Any(), usdc, m.buyerProof, seller, amountEq(39)).Return(nil),
		m.gateway.EXPECT().Transfer(gomock.Any(), gomock.Any(), usdc, m.buyerProof, treasury, amountEq(1)).Return(nil),
	)
	_, err := m.buy(1)
	assert.NoError(t, err)
}

func TestNoFeeMeansSingleTransfer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newMockedCoordinator(t, ctrl, 100, 0, nil)
	m.gateway.EXPECT().Transfer(gomock.Any(), gomock.Any(), usdc, m.buyerProof, seller, amountEq(1000)).Return(nil).Times(1)
	receipt, err := m.buy(10)
	assert.NoError(t, err)
	assert.True(t, receipt.FeePaid.IsZero())
}

func TestFullLiquidityShare(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	share := int64(10_000)
	m := newMockedCoordinator(t, ctrl, 100, 250, &share)
	gomock.InOrder(
		m.gateway.EXPECT().Transfer(gomock.Any(), gomock.Any(), usdc, m.buyerProof, seller, amountEq(975)).Return(nil),
		m.gateway.EXPECT().Transfer(gomock.Any(), gomock.Any(), usdc, m.buyerProof, pool, amountEq(25)).Return(nil),
	)
	_, err := m.buy(10)
	assert.NoError(t, err)
}

func TestGatewayFailureAbortsSale(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newMockedCoordinator(t, ctrl, 100, 250, nil)
	gomock.InOrder(
		m.gateway.EXPECT().Transfer(gomock.Any(), gomock.Any(), usdc, m.buyerProof, seller, amountEq(975)).Return(nil),
		m.gateway.EXPECT().Transfer(gomock.Any(), gomock.Any(), usdc, m.buyerProof, treasury, amountEq(25)).
			Return(market.Errorf(market.KindInsufficientFunds, "short")),
	)
	_, err := m.buy(10)
	assert.ErrorIs(t, err, market.ErrInsufficientFunds)

	asset, err := m.registry.GetAsset(context.Background(), m.store, m.assetID)
	require.NoError(t, err)
	assert.Equal(t, "1000", asset.AvailableTokens.String())
}
