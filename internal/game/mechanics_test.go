package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTravel(t *testing.T) {
	g := quietGame(t, nil)

	cost, ok := g.TravelCost("port")
	require.True(t, ok)
	assert.Equal(t, 38, cost) // 25 * 1.5 = 37.5

	r, err := g.Travel("port")
	require.NoError(t, err)
	assert.Equal(t, "Traveled to Port Town", r.Message)

	st := g.State()
	assert.Equal(t, "port", st.Location)
	assert.Equal(t, 62, st.Energy)
	assert.Equal(t, 1, st.Day, "travel does not advance the day")
}

func TestTravelRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*GameState)
		dest   string
		want   error
	}{
		{"unknown place", nil, "atlantis", ErrNotFound},
		{"not adjacent", nil, "harbor", ErrNoRoute},
		{"locked region", func(st *GameState) { st.Location = "port" }, "harbor", ErrRegionLocked},
		{"off the rails", func(st *GameState) {
			st.Location = "farmtown"
			st.Vehicle = "train"
			st.UnlockedRegions = []string{"starter", "farming"}
		}, "ranch", ErrRailRestricted},
		{"too tired", func(st *GameState) { st.Energy = 37 }, "port", ErrNotEnoughEnergy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := quietGame(t, tc.mutate)
			before := g.State()

			_, err := g.Travel(tc.dest)
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, g.State())
		})
	}
}

func TestTrainRunsOnItsNetwork(t *testing.T) {
	g := quietGame(t, func(st *GameState) {
		st.Location = "industrial"
		st.Vehicle = "train"
		st.UnlockedRegions = []string{"starter", "farming"}
	})

	_, err := g.Travel("farmtown")
	require.NoError(t, err)
}

func TestEfficiencyPartsCutTravelCost(t *testing.T) {
	g := quietGame(t, func(st *GameState) {
		st.OwnedParts = []string{"fuel_saver"}
		st.EquippedParts = []string{"fuel_saver"}
	})

	cost, _ := g.TravelCost("port")
	assert.Equal(t, 32, cost) // 25 * 1.5 * 0.85 = 31.875

	_, ok := g.TravelCost("atlantis")
	assert.False(t, ok)
}

func TestCapacity(t *testing.T) {
	g := quietGame(t, func(st *GameState) {
		st.Vehicle = "truck"
		st.OwnedParts = []string{"cargo_rack_small", "cargo_container", "fuel_saver"}
		st.EquippedParts = []string{"cargo_rack_small", "cargo_container"}
	})
	assert.Equal(t, 150+10+50, g.Capacity())
}

func TestTankerCarriesExtraLiquid(t *testing.T) {
	g := quietGame(t, func(st *GameState) {
		st.Location = "industrial"
		st.Vehicle = "tanker"
		st.Money = 100000
	})

	fuel, _ := g.Catalog().Commodity("fuel")
	textiles, _ := g.Catalog().Commodity("textiles")
	assert.Equal(t, 250, g.capacityFor(fuel))
	assert.Equal(t, 200, g.capacityFor(textiles))

	_, err := g.Buy("textiles", 201)
	require.ErrorIs(t, err, ErrNoCargoSpace)

	_, err = g.Buy("fuel", 240)
	require.NoError(t, err)

	_, err = g.Buy("fuel", 11)
	require.ErrorIs(t, err, ErrNoCargoSpace)
}

func TestBuyVehicle(t *testing.T) {
	g := quietGame(t, func(st *GameState) { st.Money = 600 })

	r, err := g.BuyVehicle("car")
	require.NoError(t, err)
	assert.Equal(t, "Purchased Car!", r.Message)
	st := g.State()
	assert.Equal(t, 100, st.Money)
	assert.Equal(t, "car", st.Vehicle)
	assert.Equal(t, 50, g.Capacity())

	_, err = g.BuyVehicle("car")
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	_, err = g.BuyVehicle("ship")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, err = g.BuyVehicle("zeppelin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuyVehicleKeepsCargoSafe(t *testing.T) {
	g := quietGame(t, func(st *GameState) {
		st.Money = 5000
		st.Vehicle = "truck"
		st.Cargo = []CargoItem{{CommodityID: "fuel", Quantity: 100, PurchasePrice: 40}}
	})

	_, err := g.BuyVehicle("car")
	require.ErrorIs(t, err, ErrNoCargoSpace)
	assert.Equal(t, "truck", g.State().Vehicle)
}

func TestDowngradeUnequipsHighTierParts(t *testing.T) {
	g := quietGame(t, func(st *GameState) {
		st.Money = 5000
		st.Vehicle = "truck"
		st.OwnedParts = []string{"cargo_container", "fuel_saver"}
		st.EquippedParts = []string{"cargo_container", "fuel_saver"}
	})

	_, err := g.BuyVehicle("car")
	require.NoError(t, err)

	st := g.State()
	assert.Equal(t, []string{"fuel_saver"}, st.EquippedParts)
	assert.Equal(t, []string{"cargo_container", "fuel_saver"}, st.OwnedParts)
}

func TestBuyPartAutoEquips(t *testing.T) {
	g := quietGame(t, func(st *GameState) {
		st.Money = 10000
		st.Vehicle = "car"
	})

	for _, id := range []string{"cargo_rack_small", "fuel_saver", "gps_navigator"} {
		r, err := g.BuyPart(id)
		require.NoError(t, err)
		assert.Contains(t, r.Message, "installed")
	}

	// Slots full: owned but not installed
	r, err := g.BuyPart("secure_lock")
	require.NoError(t, err)
	assert.NotContains(t, r.Message, "installed")

	st := g.State()
	assert.Equal(t, []string{"cargo_rack_small", "fuel_saver", "gps_navigator", "secure_lock"}, st.OwnedParts)
	assert.Equal(t, []string{"cargo_rack_small", "fuel_saver", "gps_navigator"}, st.EquippedParts)
	assert.Equal(t, 10000-300-400-600-800, st.Money)

	_, ok := g.HasSpecial(SpecialGPS)
	assert.True(t, ok)
	_, ok = g.HasSpecial(SpecialSecureLock)
	assert.False(t, ok, "owned but not equipped")
}

func TestBuyPartRejections(t *testing.T) {
	g := quietGame(t, func(st *GameState) {
		st.Money = 1000
		st.OwnedParts = []string{"fuel_saver"}
	})

	_, err := g.BuyPart("fuel_saver")
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	_, err = g.BuyPart("turbo_engine") // tier 2 and $1200, bicycle is tier 1
	assert.ErrorIs(t, err, ErrTierTooLow, "tier is checked before price")
	_, err = g.BuyPart("refrigeration")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, err = g.BuyPart("warp_core")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1000, g.State().Money)
	assert.Equal(t, []string{"fuel_saver"}, g.State().OwnedParts)
}

func TestEquipAndUnequip(t *testing.T) {
	g := quietGame(t, func(st *GameState) {
		st.Vehicle = "car"
		st.OwnedParts = []string{"cargo_rack_small", "fuel_saver", "gps_navigator", "secure_lock", "cargo_container"}
		st.EquippedParts = []string{"cargo_rack_small", "fuel_saver", "gps_navigator"}
	})

	_, err := g.EquipPart("secure_lock")
	assert.ErrorIs(t, err, ErrSlotsFull)
	_, err = g.EquipPart("fuel_saver")
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	_, err = g.EquipPart("refrigeration")
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = g.UnequipPart("gps_navigator")
	require.NoError(t, err)
	_, err = g.UnequipPart("gps_navigator")
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = g.EquipPart("cargo_container") // tier 3 on a tier 2 car
	assert.ErrorIs(t, err, ErrTierTooLow)

	r, err := g.EquipPart("secure_lock")
	require.NoError(t, err)
	assert.Equal(t, "Installed Secure Cargo Lock", r.Message)
	assert.Equal(t, []string{"cargo_rack_small", "fuel_saver", "secure_lock"}, g.State().EquippedParts)
}

func TestUnequipCannotStrandCargo(t *testing.T) {
	g := quietGame(t, func(st *GameState) {
		st.OwnedParts = []string{"cargo_rack_small"}
		st.EquippedParts = []string{"cargo_rack_small"}
		st.Cargo = []CargoItem{{CommodityID: "coffee", Quantity: 25, PurchasePrice: 20}}
	})

	_, err := g.UnequipPart("cargo_rack_small")
	require.ErrorIs(t, err, ErrNoCargoSpace)
	assert.Equal(t, []string{"cargo_rack_small"}, g.State().EquippedParts)
}

func TestUnlockRegion(t *testing.T) {
	g := quietGame(t, func(st *GameState) {
		st.Money = 1200
		st.Location = "industrial"
	})

	_, err := g.UnlockRegion("coastal")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, err = g.UnlockRegion("starter")
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	_, err = g.UnlockRegion("mars")
	assert.ErrorIs(t, err, ErrNotFound)

	r, err := g.UnlockRegion("farming")
	require.NoError(t, err)
	assert.Equal(t, "Unlocked Farmlands!", r.Message)

	st := g.State()
	assert.Equal(t, 200, st.Money)
	assert.Equal(t, []string{"starter", "farming"}, st.UnlockedRegions)
	assert.Len(t, g.LocalMarket(), 7, "grain and leather join the board")

	_, err = g.Travel("farmtown")
	require.NoError(t, err)
}
