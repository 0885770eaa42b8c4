package backend

import "github.com/adpaws/dashboard/internal/graphql"

const dogFields = `
      id
      name
      breed
      birthDate
      color
      gender
      size
      weight
      imageUrl
      ownerId`

const ownerFields = `
        id
        email
        phone
        name
        lastname
        gender
        birthDate
        profilePicture
        status`

var (
	userQuery = graphql.Document{
		Name:  "User",
		Field: "user",
		Query: `query User {
  user {
    id
    email
    name
    lastname
    role
    company {
      id
      name
      email
      phone
      logoUrl
    }
  }
}`,
	}

	signUserMutation = graphql.Document{
		Name:  "SignInUser",
		Field: "signUser",
		Query: `mutation SignInUser($input: SignInUserInput) {
  signUser(input: $input) {
    accessToken
    refreshToken
  }
}`,
	}

	companyDogsQuery = graphql.Document{
		Name:  "CompanyDogs",
		Field: "companyDogs",
		Query: `query CompanyDogs($companyId: Int) {
  companyDogs(companyId: $companyId) {` + dogFields + `
      owner {` + ownerFields + `
      }
  }
}`,
	}

	dogByIDQuery = graphql.Document{
		Name:  "DogById",
		Field: "dogById",
		Query: `query DogById($dogByIdId: Int) {
  dogById(id: $dogByIdId) {` + dogFields + `
      owner {` + ownerFields + `
      }
  }
}`,
	}

	createDogsMutation = graphql.Document{
		Name:  "CreateDogs",
		Field: "createDogs",
		Query: `mutation CreateDogs($input: CreateDogsInput!) {
  createDogs(input: $input) {` + dogFields + `
  }
}`,
	}

	updateDogMutation = graphql.Document{
		Name:  "UpdateDog",
		Field: "updateDog",
		Query: `mutation UpdateDog($input: UpdateDogInput!) {
  updateDog(input: $input) {` + dogFields + `
  }
}`,
	}

	companyDogOwnersQuery = graphql.Document{
		Name:  "CompanyDogOwners",
		Field: "companyDogOwners",
		Query: `query CompanyDogOwners($companyId: Int) {
  companyDogOwners(companyId: $companyId) {` + ownerFields + `
      dogs {
        id
        name
        breed
        imageUrl
      }
  }
}`,
	}

	servicesByCompanyQuery = graphql.Document{
		Name:  "ServicesByCompany",
		Field: "servicesByCompany",
		Query: `query ServicesByCompany($input: ServicesByCompanyInput) {
  servicesByCompany(input: $input) {
    id
    name
    type
    price
    duration
    startTime
    endTime
    daysAvailable
    active
    companyId
    createdAt
  }
}`,
	}

	guestsStatsQuery = graphql.Document{
		Name:  "GuestsStats",
		Field: "guestsStats",
		Query: `query GuestsStats {
  guestsStats {
    newDogsDuringMonth
    pastDueVaccines
    todayCheckedInDogs
    totalDogs
  }
}`,
	}

	createReservationMutation = graphql.Document{
		Name:  "CreateReservation",
		Field: "createReservation",
		Query: `mutation CreateReservation($input: CreateReservationInput!) {
  createReservation(input: $input) {
    id
    dogId
    serviceId
    checkIn
    checkOut
    status
    createdAt
  }
}`,
	}

	createClientMutation = graphql.Document{
		Name:  "CreateClient",
		Field: "createClient",
		Query: `mutation CreateClient($input: CreateClientInput!) {
  createClient(input: $input) {` + ownerFields + `
  }
}`,
	}
)
