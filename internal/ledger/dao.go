package ledger

// NewDaoState creates the singleton with every counter at zero.
func NewDaoState(p Params, authority Identity) (DaoState, error) {
	if err := authority.Validate(); err != nil {
		return DaoState{}, err
	}
	return DaoState{
		Authority:   authority,
		TotalSupply: p.TotalSupply,
	}, nil
}

// RegisterUser creates the profile for owner and counts it as active.
// last_activity is stamped with the registration time and is not moved by
// any later transition.
func RegisterUser(p Params, dao DaoState, owner Identity, union bool, now int64) (DaoState, UserProfile, error) {
	if err := owner.Validate(); err != nil {
		return dao, UserProfile{}, err
	}
	active, err := add("active_users", dao.ActiveUsers, 1)
	if err != nil {
		return dao, UserProfile{}, err
	}
	dao.ActiveUsers = active
	return dao, UserProfile{
		Owner:           owner,
		UnionMembership: union,
		ReputationScore: p.InitialReputation,
		LastActivity:    now,
	}, nil
}

// PublishMedian records the median balance used by decay. Only the
// authority may call it.
func PublishMedian(dao DaoState, caller Identity, median uint64) (DaoState, error) {
	if caller != dao.Authority {
		return dao, NewError(CodeUnauthorized, "caller", caller.String())
	}
	dao.MedianBalance = median
	return dao, nil
}
